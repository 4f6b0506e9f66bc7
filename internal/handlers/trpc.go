package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/petermazzocco/thumbnail-mixer/internal/auth"
	"github.com/petermazzocco/thumbnail-mixer/internal/services"
	"github.com/petermazzocco/thumbnail-mixer/models"
)

// ErrorCode names a procedure failure on the wire.
type ErrorCode string

const (
	CodeBadRequest         ErrorCode = "BAD_REQUEST"
	CodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	CodeNotFound           ErrorCode = "NOT_FOUND"
	CodeMethodNotSupported ErrorCode = "METHOD_NOT_SUPPORTED"
	CodeBadGateway         ErrorCode = "BAD_GATEWAY"
	CodeInternal           ErrorCode = "INTERNAL_SERVER_ERROR"
)

const maxInputBytes = 1 << 20

var statusByCode = map[ErrorCode]int{
	CodeBadRequest:         http.StatusBadRequest,
	CodeUnauthorized:       http.StatusUnauthorized,
	CodeNotFound:           http.StatusNotFound,
	CodeMethodNotSupported: http.StatusMethodNotAllowed,
	CodeBadGateway:         http.StatusBadGateway,
	CodeInternal:           http.StatusInternalServerError,
}

// Error is a failure reported to the caller as-is.
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newError(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// toError maps service and store failures onto wire errors.
func toError(err error) *Error {
	var procErr *Error
	switch {
	case errors.As(err, &procErr):
		return procErr
	case errors.Is(err, services.ErrNotFound):
		return newError(CodeNotFound, "%s", services.ErrNotFound.Error())
	case errors.Is(err, services.ErrUpstream):
		return newError(CodeBadGateway, "%s", err.Error())
	case errors.Is(err, services.ErrInvalidImage):
		return newError(CodeBadRequest, "%s", err.Error())
	default:
		return newError(CodeInternal, "internal server error")
	}
}

type resultEnvelope struct {
	Result struct {
		Data any `json:"data"`
	} `json:"result"`
}

type errorEnvelope struct {
	Error *Error `json:"error"`
}

// Context is a procedure's view of its request. User is nil for anonymous
// callers of public procedures.
type Context struct {
	context.Context
	User    *models.User
	Writer  http.ResponseWriter
	Request *http.Request
}

// procedureFunc runs a procedure with its raw JSON input.
type procedureFunc func(c *Context, input json.RawMessage) (any, error)

type procedure struct {
	mutation  bool
	protected bool
	run       procedureFunc
}

// Procedures serves named queries and mutations under /trpc/{procedure}.
// Queries take GET with ?input=<json>; mutations take POST with a JSON body.
type Procedures struct {
	procedures map[string]procedure
	validate   *validator.Validate
	log        *slog.Logger
}

func NewProcedures(log *slog.Logger) *Procedures {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Procedures{
		procedures: make(map[string]procedure),
		validate:   validate,
		log:        log,
	}
}

func (p *Procedures) add(name string, proc procedure) {
	if _, ok := p.procedures[name]; ok {
		panic("duplicate procedure " + name)
	}
	p.procedures[name] = proc
}

// Query registers a read-only procedure.
func (p *Procedures) Query(name string, protected bool, run procedureFunc) {
	p.add(name, procedure{protected: protected, run: run})
}

// Mutation registers a procedure that may change state.
func (p *Procedures) Mutation(name string, protected bool, run procedureFunc) {
	p.add(name, procedure{mutation: true, protected: protected, run: run})
}

func (p *Procedures) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "procedure")
	proc, ok := p.procedures[name]
	if !ok {
		p.writeError(w, r, name, newError(CodeNotFound, "no procedure named %q", name))
		return
	}

	var input json.RawMessage
	switch {
	case proc.mutation && r.Method == http.MethodPost:
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxInputBytes))
		if err != nil {
			p.writeError(w, r, name, newError(CodeBadRequest, "failed to read input: %v", err))
			return
		}
		input = body
	case !proc.mutation && r.Method == http.MethodGet:
		if raw := r.URL.Query().Get("input"); raw != "" {
			input = json.RawMessage(raw)
		}
	default:
		p.writeError(w, r, name, newError(CodeMethodNotSupported, "unsupported method %s for %s", r.Method, name))
		return
	}

	user := auth.CurrentUser(r.Context())
	if proc.protected && user == nil {
		p.writeError(w, r, name, newError(CodeUnauthorized, "please sign in"))
		return
	}

	c := &Context{Context: r.Context(), User: user, Writer: w, Request: r}
	data, err := proc.run(c, input)
	if err != nil {
		e := toError(err)
		if e.Code == CodeInternal || e.Code == CodeBadGateway {
			p.log.Error("procedure failed", "procedure", name, "error", err)
		}
		p.writeError(w, r, name, e)
		return
	}

	var env resultEnvelope
	env.Result.Data = data
	writeJSON(w, http.StatusOK, env)
}

func (p *Procedures) writeError(w http.ResponseWriter, r *http.Request, name string, e *Error) {
	p.log.Debug("procedure rejected", "procedure", name, "method", r.Method, "code", e.Code)
	writeJSON(w, statusByCode[e.Code], errorEnvelope{Error: e})
}

// bind adapts a typed procedure body. The input is decoded from JSON and
// validated before fn runs; an absent input decodes as the zero value.
func bind[In, Out any](validate *validator.Validate, fn func(c *Context, in In) (Out, error)) procedureFunc {
	return func(c *Context, raw json.RawMessage) (any, error) {
		var in In
		if len(raw) > 0 && string(raw) != "null" {
			if err := json.Unmarshal(raw, &in); err != nil {
				return nil, newError(CodeBadRequest, "invalid input: %v", err)
			}
		}
		if err := validate.Struct(in); err != nil {
			var validationErrors validator.ValidationErrors
			if !errors.As(err, &validationErrors) {
				return nil, newError(CodeBadRequest, "invalid input: %v", err)
			}
			messages := make([]string, 0, len(validationErrors))
			for _, e := range validationErrors {
				messages = append(messages, fmt.Sprintf("field '%s' failed on the '%s' tag", e.Field(), e.Tag()))
			}
			return nil, newError(CodeBadRequest, "%s", strings.Join(messages, "; "))
		}
		return fn(c, in)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
