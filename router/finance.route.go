package router

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/UmangSachdeva/fintrack/handlers"
)

type crud struct {
	list, create, get, update, remove http.HandlerFunc
}

func resource(r *mux.Router, path string, c crud) {
	r.HandleFunc(path, c.list).Methods("GET")
	r.HandleFunc(path, c.create).Methods("POST")
	r.HandleFunc(path+"/{id}", c.get).Methods("GET")
	r.HandleFunc(path+"/{id}", c.update).Methods("PATCH")
	r.HandleFunc(path+"/{id}", c.remove).Methods("DELETE")
}

// FinanceRouter registers accounts, cards, categories, tags and transactions.
func FinanceRouter(r *mux.Router, h *handlers.Handler) {
	resource(r, "/accounts", crud{h.ListAccounts, h.CreateAccount, h.GetAccount, h.UpdateAccount, h.DeleteAccount})
	resource(r, "/credit-cards", crud{h.ListCreditCards, h.CreateCreditCard, h.GetCreditCard, h.UpdateCreditCard, h.DeleteCreditCard})
	resource(r, "/categories", crud{h.ListCategories, h.CreateCategory, h.GetCategory, h.UpdateCategory, h.DeleteCategory})
	resource(r, "/tags", crud{h.ListTags, h.CreateTag, h.GetTag, h.UpdateTag, h.DeleteTag})

	r.HandleFunc("/categories/{id}/subcategories", h.ListSubcategories).Methods("GET")
	r.HandleFunc("/categories/{id}/subcategories", h.CreateSubcategory).Methods("POST")
	r.HandleFunc("/subcategories/{id}", h.GetSubcategory).Methods("GET")
	r.HandleFunc("/subcategories/{id}", h.UpdateSubcategory).Methods("PATCH")
	r.HandleFunc("/subcategories/{id}", h.DeleteSubcategory).Methods("DELETE")

	// Registered before the resource so "summary" is not read as an id.
	r.HandleFunc("/transactions/summary", h.TransactionSummary).Methods("GET")
	resource(r, "/transactions", crud{h.ListTransactions, h.CreateTransaction, h.GetTransaction, h.UpdateTransaction, h.DeleteTransaction})
}
