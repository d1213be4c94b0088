package sandbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/Alp4ka/gcpro/keyset"
)

const (
	_idAlphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"
	_idLength   = 12
)

// Server is a local stand-in of the payments API backed by a Store.
type Server struct {
	store  *Store
	logger *zap.Logger
	token  string
	router *gin.Engine
}

type ServerOption func(*Server)

func WithLogger(logger *zap.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithAccessToken makes the server reject requests that do not carry the
// bearer token.
func WithAccessToken(token string) ServerOption {
	return func(s *Server) {
		s.token = token
	}
}

func NewServer(store *Store, opts ...ServerOption) *Server {
	s := &Server{
		store:  store,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	router := gin.New()
	router.Use(gin.Recovery(), s.requestID(), s.logRequests(), s.authenticate())
	router.NoRoute(func(c *gin.Context) {
		abort(c, http.StatusNotFound, "invalid_api_usage", "path_not_found", "Path not found")
	})

	router.GET("/:resource", s.list)
	router.POST("/:resource", s.create)
	router.GET("/:resource/:id", s.get)
	router.PUT("/:resource/:id", s.update)
	router.DELETE("/:resource/:id", s.remove)
	router.POST("/:resource/:id/actions/:action", s.action)

	s.router = router

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("sandbox listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-Id")
		if id == "" {
			id = newID("RQ")
		}

		c.Set("request_id", id)
		c.Header("X-Request-Id", id)
		c.Next()
	}
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.logger.Debug("sandbox request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", c.GetString("request_id")),
		)
	}
}

func (s *Server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("GoCardless-Version") == "" {
			abort(c, http.StatusBadRequest, "invalid_api_usage", "missing_version_header",
				"GoCardless-Version header is required")
			return
		}

		if s.token != "" && c.GetHeader("Authorization") != "Bearer "+s.token {
			abort(c, http.StatusUnauthorized, "invalid_api_usage", "unauthorized", "Access token is invalid")
			return
		}

		c.Next()
	}
}

func (s *Server) resource(c *gin.Context) (string, resource, bool) {
	name := c.Param("resource")
	res, ok := _resources[name]
	if !ok {
		abort(c, http.StatusNotFound, "invalid_api_usage", "path_not_found", fmt.Sprintf("Unknown resource %q", name))
	}

	return name, res, ok
}

func (s *Server) list(c *gin.Context) {
	name, _, ok := s.resource(c)
	if !ok {
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > keyset.MaxLimit {
			abortField(c, "limit", fmt.Sprintf("must be between 1 and %d", keyset.MaxLimit))
			return
		}
		limit = n
	}

	var status []string
	if raw := c.Query("status"); raw != "" {
		status = strings.Split(raw, ",")
	}

	rows, next, err := s.store.List(c.Request.Context(), ListQuery{
		Resource: name,
		After:    c.Query("after"),
		Limit:    limit,
		Status:   status,
	})
	if errors.Is(err, ErrInvalidCursor) {
		abortField(c, "after", "is not a valid cursor")
		return
	}
	if err != nil {
		s.internal(c, err)
		return
	}

	items := make([]json.RawMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, json.RawMessage(row.Body))
	}

	c.JSON(http.StatusOK, gin.H{
		name: items,
		"meta": gin.H{
			"cursors": gin.H{
				"before": nil,
				"after":  lo.EmptyableToPtr(next),
			},
			"limit": keyset.NormalizeLimit(limit),
		},
	})
}

func (s *Server) get(c *gin.Context) {
	name, _, ok := s.resource(c)
	if !ok {
		return
	}

	rec, ok := s.load(c, name)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{name: json.RawMessage(rec.Body)})
}

func (s *Server) create(c *gin.Context) {
	name, res, ok := s.resource(c)
	if !ok {
		return
	}

	body, ok := readEnvelope(c, name)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	key := c.GetHeader("Idempotency-Key")
	if key != "" {
		prev, err := s.store.ByIdempotencyKey(ctx, name, key)
		switch {
		case err == nil:
			abortConflict(c, prev.ID)
			return
		case !errors.Is(err, ErrNotFound):
			s.internal(c, err)
			return
		}
	}

	now := time.Now().UTC()
	for k, v := range res.defaults {
		if _, set := body[k]; !set {
			body[k] = v
		}
	}
	body["id"] = newID(res.prefix)
	body["created_at"] = now.Format(time.RFC3339Nano)
	if res.status != "" {
		body["status"] = res.status
	}

	rec := &Record{
		ID:             body["id"].(string),
		Resource:       name,
		IdempotencyKey: lo.EmptyableToPtr(key),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if !s.encode(c, rec, body) {
		return
	}

	err := s.store.Insert(ctx, rec)
	if errors.Is(err, ErrDuplicateKey) && key != "" {
		// A concurrent request with the same key won the insert.
		prev, lookupErr := s.store.ByIdempotencyKey(ctx, name, key)
		if lookupErr == nil {
			abortConflict(c, prev.ID)
			return
		}
		err = lookupErr
	}
	if err != nil {
		s.internal(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{name: json.RawMessage(rec.Body)})
}

func (s *Server) update(c *gin.Context) {
	name, _, ok := s.resource(c)
	if !ok {
		return
	}

	patch, ok := readEnvelope(c, name)
	if !ok {
		return
	}

	rec, ok := s.load(c, name)
	if !ok {
		return
	}

	body, ok := s.decode(c, rec)
	if !ok {
		return
	}

	for k, v := range patch {
		switch k {
		case "id", "created_at", "status":
			continue
		case "metadata":
			body[k] = mergeMetadata(body[k], v)
		default:
			body[k] = v
		}
	}

	s.save(c, name, http.StatusOK, rec, body)
}

func (s *Server) remove(c *gin.Context) {
	name, _, ok := s.resource(c)
	if !ok {
		return
	}

	rec, ok := s.load(c, name)
	if !ok {
		return
	}

	if err := s.store.Delete(c.Request.Context(), rec); err != nil {
		s.internal(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{name: json.RawMessage(rec.Body)})
}

func (s *Server) action(c *gin.Context) {
	name, res, ok := s.resource(c)
	if !ok {
		return
	}

	act, ok := res.actions[c.Param("action")]
	if !ok {
		abort(c, http.StatusNotFound, "invalid_api_usage", "path_not_found",
			fmt.Sprintf("Unknown action %q for %s", c.Param("action"), name))
		return
	}

	data, ok := readEnvelope(c, "data")
	if !ok {
		return
	}

	rec, ok := s.load(c, name)
	if !ok {
		return
	}

	body, ok := s.decode(c, rec)
	if !ok {
		return
	}

	if !act(body) {
		abort(c, http.StatusUnprocessableEntity, "invalid_state", c.Param("action")+"_failed",
			fmt.Sprintf("Cannot %s a resource in its current state", strings.ReplaceAll(c.Param("action"), "_", " ")))
		return
	}
	if md, set := data["metadata"]; set {
		body["metadata"] = mergeMetadata(body["metadata"], md)
	}

	s.save(c, name, http.StatusOK, rec, body)
}

func (s *Server) load(c *gin.Context, name string) (*Record, bool) {
	rec, err := s.store.Get(c.Request.Context(), name, c.Param("id"))
	if errors.Is(err, ErrNotFound) {
		abort(c, http.StatusNotFound, "invalid_api_usage", "resource_not_found", "Resource not found")
		return nil, false
	}
	if err != nil {
		s.internal(c, err)
		return nil, false
	}

	return rec, true
}

func (s *Server) save(c *gin.Context, name string, code int, rec *Record, body map[string]any) {
	if !s.encode(c, rec, body) {
		return
	}

	if err := s.store.Update(c.Request.Context(), rec); err != nil {
		s.internal(c, err)
		return
	}

	c.JSON(code, gin.H{name: json.RawMessage(rec.Body)})
}

func (s *Server) decode(c *gin.Context, rec *Record) (map[string]any, bool) {
	body := make(map[string]any)
	if err := json.Unmarshal([]byte(rec.Body), &body); err != nil {
		s.internal(c, fmt.Errorf("corrupted record %s: %w", rec.ID, err))
		return nil, false
	}

	return body, true
}

func (s *Server) encode(c *gin.Context, rec *Record, body map[string]any) bool {
	raw, err := json.Marshal(body)
	if err != nil {
		s.internal(c, err)
		return false
	}

	rec.Body = string(raw)
	rec.Status, _ = body["status"].(string)

	return true
}

func (s *Server) internal(c *gin.Context, err error) {
	s.logger.Error("sandbox request failed", zap.Error(err), zap.String("request_id", c.GetString("request_id")))
	abort(c, http.StatusInternalServerError, "gocardless", "internal_server_error", "Internal server error")
}

// readEnvelope decodes {"<key>": {...}}. An empty request body yields an
// empty object.
func readEnvelope(c *gin.Context, key string) (map[string]any, bool) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		abort(c, http.StatusBadRequest, "invalid_api_usage", "invalid_body", "Cannot read request body")
		return nil, false
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return map[string]any{}, true
	}

	var envelope map[string]map[string]any
	if err = json.Unmarshal(raw, &envelope); err != nil {
		abort(c, http.StatusBadRequest, "invalid_api_usage", "invalid_document_structure", "Request body is not valid JSON")
		return nil, false
	}

	body, ok := envelope[key]
	if !ok {
		abort(c, http.StatusBadRequest, "invalid_api_usage", "invalid_document_structure",
			fmt.Sprintf("Request body must be wrapped in %q", key))
		return nil, false
	}

	return lo.Ternary(body == nil, map[string]any{}, body), true
}

func mergeMetadata(cur, patch any) map[string]any {
	ret := make(map[string]any)
	if m, ok := cur.(map[string]any); ok {
		for k, v := range m {
			ret[k] = v
		}
	}
	if m, ok := patch.(map[string]any); ok {
		for k, v := range m {
			ret[k] = v
		}
	}

	return ret
}

func newID(prefix string) string {
	return prefix + gonanoid.MustGenerate(_idAlphabet, _idLength)
}
