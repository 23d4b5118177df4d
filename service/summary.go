package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/UmangSachdeva/fintrack/money"
	"github.com/UmangSachdeva/fintrack/store"
)

type CategoryTotal struct {
	CategoryID *primitive.ObjectID `json:"category_id"`
	Name       string              `json:"name"`
	Total      string              `json:"total"`
	Count      int                 `json:"count"`
}

type Summary struct {
	From          *time.Time      `json:"from,omitempty"`
	To            *time.Time      `json:"to,omitempty"`
	Income        string          `json:"income"`
	Expense       string          `json:"expense"`
	Net           string          `json:"net"`
	Count         int             `json:"count"`
	MeanExpense   string          `json:"mean_expense"`
	MedianExpense string          `json:"median_expense"`
	ByCategory    []CategoryTotal `json:"by_category"`
}

// Summary totals the user's transactions dated within [from, to]. Nil bounds
// are open.
func (l *Ledger) Summary(ctx context.Context, userID primitive.ObjectID, from, to *time.Time) (*Summary, error) {
	var (
		income, expense decimal.Decimal
		expenses        []float64
		count           int
	)
	byCategory := make(map[primitive.ObjectID]*CategoryTotal)
	uncategorized := &CategoryTotal{}
	totals := make(map[*CategoryTotal]decimal.Decimal)

	q := store.Query{Limit: store.MaxLimit, Sort: "date", Asc: true, From: from, To: to}
	for page := 1; ; page++ {
		q.Page = page
		txns, total, err := l.store.Transactions().List(ctx, userID, q)
		if err != nil {
			return nil, err
		}

		for i := range txns {
			txn := &txns[i]
			amount, err := money.Decimal(txn.Amount)
			if err != nil {
				return nil, err
			}
			count++

			if txn.Type == money.Income {
				income = income.Add(amount)
				continue
			}

			expense = expense.Add(amount)
			expenses = append(expenses, amount.InexactFloat64())

			bucket := uncategorized
			if txn.CategoryID != nil {
				if bucket = byCategory[*txn.CategoryID]; bucket == nil {
					id := *txn.CategoryID
					bucket = &CategoryTotal{CategoryID: &id}
					byCategory[id] = bucket
				}
			}
			bucket.Count++
			totals[bucket] = totals[bucket].Add(amount)
		}

		if int64(page*q.Limit) >= total || len(txns) == 0 {
			break
		}
	}

	s := &Summary{
		From:          from,
		To:            to,
		Income:        income.StringFixed(2),
		Expense:       expense.StringFixed(2),
		Net:           income.Sub(expense).StringFixed(2),
		Count:         count,
		MeanExpense:   money.ZeroAmount,
		MedianExpense: money.ZeroAmount,
		ByCategory:    []CategoryTotal{},
	}

	if len(expenses) > 0 {
		mean, err := stats.Mean(expenses)
		if err != nil {
			return nil, err
		}
		median, err := stats.Median(expenses)
		if err != nil {
			return nil, err
		}
		s.MeanExpense = decimal.NewFromFloat(mean).StringFixed(2)
		s.MedianExpense = decimal.NewFromFloat(median).StringFixed(2)
	}

	for id, bucket := range byCategory {
		category, err := l.store.Categories().Get(ctx, userID, id)
		switch {
		case err == nil:
			bucket.Name = category.Name
		case !errors.Is(err, store.ErrNotFound):
			return nil, err
		}
		bucket.Total = totals[bucket].StringFixed(2)
		s.ByCategory = append(s.ByCategory, *bucket)
	}
	if uncategorized.Count > 0 {
		uncategorized.Total = totals[uncategorized].StringFixed(2)
		s.ByCategory = append(s.ByCategory, *uncategorized)
	}

	sort.SliceStable(s.ByCategory, func(i, j int) bool {
		a, _ := decimal.NewFromString(s.ByCategory[i].Total)
		b, _ := decimal.NewFromString(s.ByCategory[j].Total)
		if !a.Equal(b) {
			return a.GreaterThan(b)
		}
		return s.ByCategory[i].Name < s.ByCategory[j].Name
	})

	return s, nil
}
