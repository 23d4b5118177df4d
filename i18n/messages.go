package i18n

// Message keys returned in error bodies.
const (
	ErrBadRequest       = "bad_request"
	ErrValidation       = "validation_failed"
	ErrInvalidAmount    = "invalid_amount"
	ErrInvalidReference = "invalid_reference"
	ErrUnauthorized     = "unauthorized"
	ErrInvalidLogin     = "invalid_credentials"
	ErrTokenExpired     = "token_expired"
	ErrForbidden        = "forbidden"
	ErrNotFound         = "not_found"
	ErrDuplicate        = "duplicate"
	ErrEmailTaken       = "email_taken"
	ErrInUse            = "in_use"
	ErrConflict         = "conflict"
	ErrUnsupportedFile  = "unsupported_file"
	ErrFileTooLarge     = "file_too_large"
	ErrTooManyFiles     = "too_many_files"
	ErrWeakPassword     = "weak_password"
	ErrWrongPassword    = "wrong_password"
	ErrBankLinkDisabled = "bank_link_unavailable"
	ErrInternal         = "internal_error"
	MsgDeleted          = "deleted"
	MsgLoggedOut        = "logged_out"
	MsgPasswordChanged  = "password_changed"
	MsgFeedbackReceived = "feedback_received"
	MsgFieldRequired    = "field_required"
	MsgFieldInvalid     = "field_invalid"
)

var catalogue = map[string]map[string]string{
	"pt-BR": {
		ErrBadRequest:       "Requisição inválida",
		ErrValidation:       "Dados inválidos",
		ErrInvalidAmount:    "Valor monetário inválido",
		ErrInvalidReference: "Referência inválida",
		ErrUnauthorized:     "Não autorizado",
		ErrInvalidLogin:     "E-mail ou senha inválidos",
		ErrTokenExpired:     "Sessão expirada",
		ErrForbidden:        "Acesso negado",
		ErrNotFound:         "Registro não encontrado",
		ErrDuplicate:        "Registro já existe",
		ErrEmailTaken:       "E-mail já cadastrado",
		ErrInUse:            "Registro em uso por outras entidades",
		ErrConflict:         "Conflito ao atualizar o saldo, tente novamente",
		ErrUnsupportedFile:  "Tipo de arquivo não suportado",
		ErrFileTooLarge:     "Arquivo muito grande",
		ErrTooManyFiles:     "Número máximo de arquivos excedido",
		ErrWeakPassword:     "A senha deve ter pelo menos 8 caracteres",
		ErrWrongPassword:    "Senha atual incorreta",
		ErrBankLinkDisabled: "Integração bancária indisponível",
		ErrInternal:         "Erro interno do servidor",
		MsgDeleted:          "Registro excluído com sucesso",
		MsgLoggedOut:        "Sessão encerrada",
		MsgPasswordChanged:  "Senha alterada com sucesso",
		MsgFeedbackReceived: "Obrigado pelo feedback",
		MsgFieldRequired:    "O campo %s é obrigatório",
		MsgFieldInvalid:     "O campo %s é inválido",
	},
	"en-US": {
		ErrBadRequest:       "Bad request",
		ErrValidation:       "Validation failed",
		ErrInvalidAmount:    "Invalid monetary amount",
		ErrInvalidReference: "Invalid reference",
		ErrUnauthorized:     "Unauthorized",
		ErrInvalidLogin:     "Invalid email or password",
		ErrTokenExpired:     "Session expired",
		ErrForbidden:        "Forbidden",
		ErrNotFound:         "Record not found",
		ErrDuplicate:        "Record already exists",
		ErrEmailTaken:       "Email already registered",
		ErrInUse:            "Record is referenced by other records",
		ErrConflict:         "Balance update conflict, please retry",
		ErrUnsupportedFile:  "Unsupported file type",
		ErrFileTooLarge:     "File too large",
		ErrTooManyFiles:     "Too many files",
		ErrWeakPassword:     "Password must be at least 8 characters",
		ErrWrongPassword:    "Current password is incorrect",
		ErrBankLinkDisabled: "Bank linking is unavailable",
		ErrInternal:         "Internal server error",
		MsgDeleted:          "Deleted successfully",
		MsgLoggedOut:        "Logged out",
		MsgPasswordChanged:  "Password changed",
		MsgFeedbackReceived: "Thanks for your feedback",
		MsgFieldRequired:    "Field %s is required",
		MsgFieldInvalid:     "Field %s is invalid",
	},
	"es-ES": {
		ErrBadRequest:       "Solicitud inválida",
		ErrValidation:       "Datos inválidos",
		ErrInvalidAmount:    "Importe monetario inválido",
		ErrInvalidReference: "Referencia inválida",
		ErrUnauthorized:     "No autorizado",
		ErrInvalidLogin:     "Correo o contraseña inválidos",
		ErrTokenExpired:     "Sesión expirada",
		ErrForbidden:        "Acceso denegado",
		ErrNotFound:         "Registro no encontrado",
		ErrDuplicate:        "El registro ya existe",
		ErrEmailTaken:       "Correo ya registrado",
		ErrInUse:            "Registro en uso por otras entidades",
		ErrConflict:         "Conflicto al actualizar el saldo, inténtelo de nuevo",
		ErrUnsupportedFile:  "Tipo de archivo no soportado",
		ErrFileTooLarge:     "Archivo demasiado grande",
		ErrTooManyFiles:     "Demasiados archivos",
		ErrWeakPassword:     "La contraseña debe tener al menos 8 caracteres",
		ErrWrongPassword:    "La contraseña actual es incorrecta",
		ErrBankLinkDisabled: "Integración bancaria no disponible",
		ErrInternal:         "Error interno del servidor",
		MsgDeleted:          "Registro eliminado",
		MsgLoggedOut:        "Sesión cerrada",
		MsgPasswordChanged:  "Contraseña cambiada",
		MsgFeedbackReceived: "Gracias por tus comentarios",
		MsgFieldRequired:    "El campo %s es obligatorio",
		MsgFieldInvalid:     "El campo %s no es válido",
	},
}
