package api

import (
	"time"

	"scoring-api/internal/fields"
	"scoring-api/internal/scoring"
)

// Имена методов, которые понимает диспетчер.
const (
	MethodOnlineScore      = "online_score"
	MethodClientsInterests = "clients_interests"
)

// Схемы запросов. Порядок полей — это порядок проверки.
var (
	// credentialsSchema проверяется до авторизации.
	credentialsSchema = fields.Schema{
		{Name: "account", Kind: fields.Text, Nullable: true},
		{Name: "login", Kind: fields.Text, Required: true, Nullable: true},
		{Name: "token", Kind: fields.Text, Required: true, Nullable: true},
	}

	// callSchema проверяется после успешной авторизации.
	callSchema = fields.Schema{
		{Name: "arguments", Kind: fields.Arguments, Required: true, Nullable: true},
		{Name: "method", Kind: fields.Text, Required: true},
	}

	onlineScoreSchema = fields.Schema{
		{Name: "first_name", Kind: fields.Text, Nullable: true},
		{Name: "last_name", Kind: fields.Text, Nullable: true},
		{Name: "phone", Kind: fields.Phone, Nullable: true},
		{Name: "email", Kind: fields.Email, Nullable: true},
		{Name: "birthday", Kind: fields.BirthDate, Nullable: true},
		{Name: "gender", Kind: fields.Gender, Nullable: true},
	}

	clientsInterestsSchema = fields.Schema{
		{Name: "client_ids", Kind: fields.ClientIDs, Required: true},
		{Name: "date", Kind: fields.Date, Nullable: true},
	}
)

// MethodRequest — конверт запроса. nil означает, что поле не передано
// или передано как null.
type MethodRequest struct {
	Account   *string
	Login     *string
	Token     *string
	Arguments map[string]any
	Method    string
}

// IsAdmin — запрос от имени администратора.
func (r *MethodRequest) IsAdmin() bool {
	return r.Login != nil && *r.Login == AdminLogin
}

func (r *MethodRequest) set(name string, v any) {
	switch name {
	case "account":
		r.Account = asString(v)
	case "login":
		r.Login = asString(v)
	case "token":
		r.Token = asString(v)
	case "arguments":
		r.Arguments, _ = v.(map[string]any)
	case "method":
		r.Method, _ = v.(string)
	}
}

// OnlineScoreRequest — аргументы метода online_score.
type OnlineScoreRequest struct {
	FirstName *string
	LastName  *string
	Phone     *string
	Email     *string
	Birthday  *time.Time
	Gender    *int
}

func (r *OnlineScoreRequest) set(name string, v any) {
	switch name {
	case "first_name":
		r.FirstName = asString(v)
	case "last_name":
		r.LastName = asString(v)
	case "phone":
		r.Phone = asString(v)
	case "email":
		r.Email = asString(v)
	case "birthday":
		if d, ok := v.(time.Time); ok {
			r.Birthday = &d
		}
	case "gender":
		if g, ok := v.(int); ok {
			r.Gender = &g
		}
	}
}

// Profile переводит запрос во входные данные скоринга.
func (r *OnlineScoreRequest) Profile() scoring.Profile {
	return scoring.Profile{
		FirstName: deref(r.FirstName),
		LastName:  deref(r.LastName),
		Phone:     deref(r.Phone),
		Email:     deref(r.Email),
		Birthday:  r.Birthday,
		Gender:    r.Gender,
	}
}

// ClientsInterestsRequest — аргументы метода clients_interests.
type ClientsInterestsRequest struct {
	ClientIDs []int64
	Date      *time.Time
}

func (r *ClientsInterestsRequest) set(name string, v any) {
	switch name {
	case "client_ids":
		r.ClientIDs, _ = v.([]int64)
	case "date":
		if d, ok := v.(time.Time); ok {
			r.Date = &d
		}
	}
}

// ScoreResponse — ответ online_score.
type ScoreResponse struct {
	Score float64 `json:"score"`
}

// RequestContext — состояние одного запроса, которое попадает в итоговый
// лог: какие поля скоринга были переданы и сколько клиентов обработано.
type RequestContext struct {
	RequestID string
	Method    string
	Has       []string
	NClients  int
}

func asString(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
