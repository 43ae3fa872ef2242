package auth

import "net/http"

// Reason identifies why a login or session check was denied. Reasons are
// logged server-side in full; what reaches the client is the Denial's
// Error/Message pair, which collapses the credential-enumeration cases.
type Reason string

const (
	ReasonMissingFields        Reason = "missing_fields"
	ReasonRateLimited          Reason = "rate_limited"
	ReasonInvalidUsername      Reason = "invalid_username"
	ReasonInvalidPassword      Reason = "invalid_password"
	ReasonIPNotAuthorized      Reason = "ip_not_authorized"
	ReasonUserNotFound         Reason = "user_not_found"
	ReasonUserInactive         Reason = "user_inactive"
	ReasonOutsideBusinessHours Reason = "outside_business_hours"
	ReasonBadCredentials       Reason = "bad_credentials"

	ReasonTokenMissing    Reason = "token_missing"
	ReasonSessionNotFound Reason = "session_not_found"
	ReasonSessionExpired  Reason = "session_expired"
	ReasonServerError     Reason = "server_error"
)

// Denial carries everything a handler needs to answer a denied request and
// everything the audit log needs to record it.
type Denial struct {
	Reason  Reason // machine-readable reason, logged in full
	Status  int    // HTTP status for the response
	Error   string // user-facing error line
	Message string // optional user-facing detail
	Audit   string // audit log reason text, empty when not audited
}

// Exact user-facing texts of the original portal. Usuário-não-encontrado and
// senha-incorreta intentionally share one message.
const (
	msgMissingFields  = "Campos obrigatórios ausentes"
	msgRateLimited    = "Muitas tentativas de login"
	msgRateLimitedTip = "Tente novamente em 15 minutos."
	msgBadUsername    = "Formato de usuário inválido"
	msgBadPassword    = "Senha inválida"
	msgIPDenied       = "Acesso negado"
	msgIPDeniedTip    = "Este acesso não está autorizado fora do ambiente de trabalho."
	msgBadCredentials = "Usuário ou senha incorretos"
	msgUserInactive   = "Usuário inativo"
	msgOutsideHours   = "Fora do horário comercial"
	msgOutsideTip     = "Este acesso é disponibilizado em conformidade com o horário comercial da empresa."
	msgServerError    = "Erro interno no servidor"
)

// Audit reason texts, written server-side regardless of what the client sees.
const (
	auditRateLimited    = "Limite de tentativas excedido"
	auditBadUsername    = "Formato de usuário inválido"
	auditBadPassword    = "Senha inválida"
	auditIPDenied       = "IP não autorizado"
	auditUserNotFound   = "Usuário não encontrado"
	auditUserInactive   = "Usuário inativo"
	auditOutsideHours   = "Fora do horário comercial"
	auditBadCredentials = "Senha incorreta"
)

func denialFor(reason Reason) *Denial {
	switch reason {
	case ReasonMissingFields:
		return &Denial{Reason: reason, Status: http.StatusBadRequest, Error: msgMissingFields}
	case ReasonRateLimited:
		return &Denial{Reason: reason, Status: http.StatusTooManyRequests, Error: msgRateLimited, Message: msgRateLimitedTip, Audit: auditRateLimited}
	case ReasonInvalidUsername:
		return &Denial{Reason: reason, Status: http.StatusBadRequest, Error: msgBadUsername, Audit: auditBadUsername}
	case ReasonInvalidPassword:
		return &Denial{Reason: reason, Status: http.StatusBadRequest, Error: msgBadPassword, Audit: auditBadPassword}
	case ReasonIPNotAuthorized:
		return &Denial{Reason: reason, Status: http.StatusForbidden, Error: msgIPDenied, Message: msgIPDeniedTip, Audit: auditIPDenied}
	case ReasonUserNotFound:
		return &Denial{Reason: reason, Status: http.StatusUnauthorized, Error: msgBadCredentials, Audit: auditUserNotFound}
	case ReasonUserInactive:
		return &Denial{Reason: reason, Status: http.StatusUnauthorized, Error: msgUserInactive, Audit: auditUserInactive}
	case ReasonOutsideBusinessHours:
		return &Denial{Reason: reason, Status: http.StatusForbidden, Error: msgOutsideHours, Message: msgOutsideTip, Audit: auditOutsideHours}
	case ReasonBadCredentials:
		return &Denial{Reason: reason, Status: http.StatusUnauthorized, Error: msgBadCredentials, Audit: auditBadCredentials}
	case ReasonTokenMissing:
		return &Denial{Reason: reason, Status: http.StatusBadRequest, Error: "Session token ausente"}
	case ReasonSessionNotFound:
		return &Denial{Reason: reason, Status: http.StatusUnauthorized, Error: "Sessão inválida"}
	case ReasonSessionExpired:
		return &Denial{Reason: reason, Status: http.StatusUnauthorized, Error: "Sessão expirada"}
	default:
		return &Denial{Reason: ReasonServerError, Status: http.StatusInternalServerError, Error: msgServerError}
	}
}
