package httpadapter

import (
    "context"
    "encoding/json"
    "errors"
    "net/http"
    "time"

    "github.com/go-chi/chi/v5"
    "github.com/go-chi/chi/v5/middleware"
    "github.com/go-playground/validator/v10"
    "github.com/oapi-codegen/runtime"
    "github.com/rs/zerolog/log"
    "github.com/shopspring/decimal"

    "freightdesk/internal/domain"
    "freightdesk/internal/ports"
    "freightdesk/internal/textgen"
    "freightdesk/internal/workers/auditrunner"
)

const (
    defaultWaitTimeout = 30
    maxWaitTimeout     = 300
)

type Deps struct {
    Audits       ports.Auditor
    Jobs         ports.AuditJobRepository
    Processor    auditrunner.Processor
    Surcharges   ports.SurchargeCatalog
    Rates        ports.RateBook
    Negotiations ports.Negotiator
}

type Server struct {
    Deps
    validate *validator.Validate
}

func New(d Deps) *Server {
    return &Server{Deps: d, validate: validator.New()}
}

// Routes returns a chi.Router with every endpoint mounted.
func (s *Server) Routes() chi.Router {
    r := chi.NewRouter()
    r.Use(requestLogger)
    r.Get("/healthz", s.getHealthz)

    r.Route("/quotes", func(r chi.Router) {
        r.Post("/audits", s.postAudit)
        r.Get("/audits/{id}", s.getAuditJob)
        r.Get("/{id}", s.getQuote)
        r.Post("/{id}/challenge", s.postChallenge)
    })

    r.Get("/surcharges", s.getSurcharges)
    r.Post("/surcharges", s.postSurcharge)
    r.Get("/rates", s.getRates)
    r.Post("/rates", s.postRate)

    r.Post("/bids", s.postBid)
    r.Post("/negotiations/{bid_id}/counter", s.postCounter)
    r.Get("/negotiations/{bid_id}/history", s.getHistory)
    return r
}

func (s *Server) getHealthz(w http.ResponseWriter, _ *http.Request) {
    writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type auditRequest struct {
    Text        string `json:"text" validate:"required"`
    SubmittedBy string `json:"submitted_by" validate:"omitempty,max=320"`
}

type auditAccepted struct {
    JobID  string `json:"job_id"`
    Status string `json:"status"`
}

func (s *Server) postAudit(w http.ResponseWriter, r *http.Request) {
    var req auditRequest
    if !s.decode(w, r, &req) { return }

    var wait bool
    timeout := defaultWaitTimeout
    if err := runtime.BindQueryParameter("form", true, false, "wait", r.URL.Query(), &wait); err != nil {
        writeError(w, badRequest(err))
        return
    }
    if err := runtime.BindQueryParameter("form", true, false, "timeout", r.URL.Query(), &timeout); err != nil {
        writeError(w, badRequest(err))
        return
    }
    if timeout <= 0 || timeout > maxWaitTimeout {
        timeout = defaultWaitTimeout
    }

    id, err := s.Audits.Submit(r.Context(), req.Text, req.SubmittedBy)
    if err != nil {
        writeError(w, err)
        return
    }
    if !wait {
        writeJSON(w, http.StatusAccepted, auditAccepted{JobID: id, Status: domain.JobQueued})
        return
    }

    // Blocking path runs the same processor the workers use.
    ctx, cancel := context.WithTimeout(r.Context(), time.Duration(timeout)*time.Second)
    defer cancel()
    quoteID, err := auditrunner.ProcessInline(ctx, s.Jobs, s.Processor, id)
    if err != nil {
        writeError(w, err)
        return
    }
    q, err := s.Audits.Quote(ctx, quoteID)
    if err != nil {
        writeError(w, err)
        return
    }
    writeJSON(w, http.StatusOK, q)
}

func (s *Server) getAuditJob(w http.ResponseWriter, r *http.Request) {
    id, ok := pathParam(w, r, "id")
    if !ok { return }
    job, err := s.Audits.Status(r.Context(), id)
    if err != nil {
        writeError(w, err)
        return
    }
    writeJSON(w, http.StatusOK, job)
}

func (s *Server) getQuote(w http.ResponseWriter, r *http.Request) {
    id, ok := pathParam(w, r, "id")
    if !ok { return }
    q, err := s.Audits.Quote(r.Context(), id)
    if err != nil {
        writeError(w, err)
        return
    }
    writeJSON(w, http.StatusOK, q)
}

func (s *Server) postChallenge(w http.ResponseWriter, r *http.Request) {
    id, ok := pathParam(w, r, "id")
    if !ok { return }
    email, err := s.Audits.Challenge(r.Context(), id)
    if err != nil {
        writeError(w, err)
        return
    }
    writeJSON(w, http.StatusOK, email)
}

type surchargeRequest struct {
    RawName        string `json:"raw_name" validate:"required,max=100"`
    NormalizedName string `json:"normalized_name" validate:"max=100"`
    Category       string `json:"category" validate:"max=50"`
    IsApproved     *bool  `json:"is_approved"`
}

func (s *Server) getSurcharges(w http.ResponseWriter, r *http.Request) {
    refs, err := s.Surcharges.List(r.Context())
    if err != nil {
        writeError(w, err)
        return
    }
    writeJSON(w, http.StatusOK, nonNil(refs))
}

func (s *Server) postSurcharge(w http.ResponseWriter, r *http.Request) {
    var req surchargeRequest
    if !s.decode(w, r, &req) { return }
    ref := domain.SurchargeRef{RawName: req.RawName, NormalizedName: req.NormalizedName, Category: req.Category, Approved: true}
    if req.IsApproved != nil {
        ref.Approved = *req.IsApproved
    }
    out, err := s.Surcharges.Upsert(r.Context(), ref)
    if err != nil {
        writeError(w, err)
        return
    }
    writeJSON(w, http.StatusCreated, out)
}

type rateRequest struct {
    CurrencyCode string          `json:"currency_code" validate:"required,len=3,alpha"`
    RateToUSD    decimal.Decimal `json:"rate_to_usd"`
}

func (s *Server) getRates(w http.ResponseWriter, r *http.Request) {
    rates, err := s.Rates.List(r.Context())
    if err != nil {
        writeError(w, err)
        return
    }
    writeJSON(w, http.StatusOK, nonNil(rates))
}

func (s *Server) postRate(w http.ResponseWriter, r *http.Request) {
    var req rateRequest
    if !s.decode(w, r, &req) { return }
    out, err := s.Rates.Set(r.Context(), domain.ExchangeRate{Currency: req.CurrencyCode, RateToUSD: req.RateToUSD})
    if err != nil {
        writeError(w, err)
        return
    }
    writeJSON(w, http.StatusCreated, out)
}

type bidRequest struct {
    TenderTitle string          `json:"tender_title" validate:"required,max=100"`
    CarrierName string          `json:"carrier_name" validate:"required,max=100"`
    OfferedRate decimal.Decimal `json:"offered_rate"`
    Currency    string          `json:"currency" validate:"omitempty,len=3"`
}

func (s *Server) postBid(w http.ResponseWriter, r *http.Request) {
    var req bidRequest
    if !s.decode(w, r, &req) { return }
    bid, err := s.Negotiations.OpenBid(r.Context(), domain.Bid{
        TenderTitle: req.TenderTitle,
        CarrierName: req.CarrierName,
        OfferedRate: req.OfferedRate,
        Currency:    req.Currency,
    })
    if err != nil {
        writeError(w, err)
        return
    }
    writeJSON(w, http.StatusCreated, bid)
}

type counterRequest struct {
    Amount decimal.Decimal `json:"amount"`
}

func (s *Server) postCounter(w http.ResponseWriter, r *http.Request) {
    bidID, ok := pathParam(w, r, "bid_id")
    if !ok { return }
    var req counterRequest
    if !s.decode(w, r, &req) { return }
    p, err := s.Negotiations.Counter(r.Context(), bidID, req.Amount)
    if err != nil {
        writeError(w, err)
        return
    }
    writeJSON(w, http.StatusOK, p)
}

func (s *Server) getHistory(w http.ResponseWriter, r *http.Request) {
    bidID, ok := pathParam(w, r, "bid_id")
    if !ok { return }
    st, err := s.Negotiations.History(r.Context(), bidID)
    if err != nil {
        writeError(w, err)
        return
    }
    st.History = nonNil(st.History)
    writeJSON(w, http.StatusOK, st)
}

// decode reads a JSON body into dst and validates it, answering 400 itself
// on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
    if r.Body == nil {
        writeError(w, &runtimeError{code: http.StatusBadRequest, msg: "missing body"})
        return false
    }
    dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
    if err := dec.Decode(dst); err != nil {
        writeError(w, badRequest(err))
        return false
    }
    if err := s.validate.Struct(dst); err != nil {
        writeError(w, badRequest(err))
        return false
    }
    return true
}

func pathParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
    var v string
    err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &v,
        runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
    if err != nil {
        writeError(w, badRequest(err))
        return "", false
    }
    return v, true
}

type errorBody struct {
    Error string `json:"error"`
}

type runtimeError struct {
    code int
    msg  string
}

func (e *runtimeError) Error() string { return e.msg }

func badRequest(err error) error {
    return &runtimeError{code: http.StatusBadRequest, msg: err.Error()}
}

// statusFor maps domain and capability errors onto HTTP status codes.
func statusFor(err error) int {
    var re *runtimeError
    switch {
    case errors.As(err, &re):
        return re.code
    case errors.Is(err, context.DeadlineExceeded):
        return http.StatusGatewayTimeout
    case errors.Is(err, domain.ErrNotFound):
        return http.StatusNotFound
    case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidRate),
        errors.Is(err, domain.ErrInvalidQuote), errors.Is(err, domain.ErrMissingQuote):
        return http.StatusBadRequest
    case errors.Is(err, domain.ErrNegotiationClosed):
        return http.StatusConflict
    case errors.Is(err, textgen.ErrUnavailable), errors.Is(err, textgen.ErrBadReply),
        errors.Is(err, domain.ErrExtraction), errors.Is(err, domain.ErrJobFailed):
        return http.StatusBadGateway
    }
    return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
    code := statusFor(err)
    msg := err.Error()
    if code == http.StatusInternalServerError {
        log.Error().Err(err).Msg("request failed")
        msg = http.StatusText(code)
    }
    writeJSON(w, code, errorBody{Error: msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(code)
    if err := json.NewEncoder(w).Encode(v); err != nil {
        log.Warn().Err(err).Msg("write response")
    }
}

func nonNil[T any](s []T) []T {
    if s == nil {
        return []T{}
    }
    return s
}

func requestLogger(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
        start := time.Now()
        next.ServeHTTP(ww, r)
        log.Info().
            Str("method", r.Method).
            Str("path", r.URL.Path).
            Int("status", ww.Status()).
            Dur("elapsed", time.Since(start)).
            Str("request_id", middleware.GetReqID(r.Context())).
            Msg("http request")
    })
}
