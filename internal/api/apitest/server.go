// Package apitest runs an in-memory task backend for tests.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/jask/taskpad/internal/api"
)

// Request is what the server saw for one call.
type Request struct {
	Method        string
	Path          string
	Authorization string
	RequestID     string
}

// Server mimics the task backend: form login issuing HS256 JWTs, JSON
// register, bearer-protected task CRUD.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	secret   []byte
	users    map[string]string
	tasks    map[api.ID]api.Task
	order    []api.ID
	requests []Request
}

// New starts a server and closes it when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		secret: []byte(uuid.NewString()),
		users:  map[string]string{},
		tasks:  map[api.ID]api.Task{},
	}
	s.Server = httptest.NewServer(s.router())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.record)
	r.HandleFunc("/login", s.login).Methods(http.MethodPost)
	r.HandleFunc("/register", s.register).Methods(http.MethodPost)

	tasks := r.PathPrefix("/tasks").Subrouter()
	tasks.Use(s.requireBearer)
	tasks.HandleFunc("", s.listTasks).Methods(http.MethodGet)
	tasks.HandleFunc("", s.createTask).Methods(http.MethodPost)
	tasks.HandleFunc("/{id}", s.updateTask).Methods(http.MethodPut)
	tasks.HandleFunc("/{id}", s.deleteTask).Methods(http.MethodDelete)
	return r
}

// AddUser registers credentials directly.
func (s *Server) AddUser(email, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[email] = password
}

// HasUser reports whether email is registered.
func (s *Server) HasUser(email string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.users[email]
	return ok
}

// AddTask stores a task and returns it with its new id.
func (s *Server) AddTask(in api.TaskInput) api.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(in)
}

// Tasks returns stored tasks in creation order.
func (s *Server) Tasks() []api.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]api.Task, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.tasks[id])
	}
	return out
}

// Requests returns every call seen so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Mint issues a valid token for subject.
func (s *Server) Mint(subject string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mintLocked(subject)
}

// RevokeAll rotates the signing key so every issued token is rejected.
func (s *Server) RevokeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.secret = []byte(uuid.NewString())
}

func (s *Server) mintLocked(subject string) string {
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		panic(err)
	}
	return signed
}

func (s *Server) insertLocked(in api.TaskInput) api.Task {
	if in.Status == "" {
		in.Status = api.StatusToDo
	}
	task := api.Task{ID: api.ID(uuid.NewString()), Title: in.Title, Description: in.Description, Status: in.Status}
	s.tasks[task.ID] = task
	s.order = append(s.order, task.ID)
	return task
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-ID"),
		})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		s.mu.Lock()
		secret := s.secret
		s.mu.Unlock()
		_, err := jwt.Parse(raw, func(*jwt.Token) (any, error) { return secret, nil },
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusBadRequest, "bad form")
		return
	}
	email, password := r.PostForm.Get("username"), r.PostForm.Get("password")
	s.mu.Lock()
	want, ok := s.users[email]
	var token string
	if ok && want == password {
		token = s.mintLocked(email)
	}
	s.mu.Unlock()
	if token == "" {
		writeDetail(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}
	writeJSON(w, http.StatusOK, api.TokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Email == "" || body.Password == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "email and password are required")
		return
	}
	s.mu.Lock()
	_, exists := s.users[body.Email]
	if !exists {
		s.users[body.Email] = body.Password
	}
	s.mu.Unlock()
	if exists {
		writeDetail(w, http.StatusBadRequest, "Email already registered")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"email": body.Email})
}

func (s *Server) listTasks(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Tasks())
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeInput(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusCreated, s.AddTask(in))
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	id := api.ID(mux.Vars(r)["id"])
	in, ok := decodeInput(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	task, exists := s.tasks[id]
	if exists {
		task.Title, task.Description, task.Status = in.Title, in.Description, in.Status
		s.tasks[id] = task
	}
	s.mu.Unlock()
	if !exists {
		writeDetail(w, http.StatusNotFound, "Task not found")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	id := api.ID(mux.Vars(r)["id"])
	s.mu.Lock()
	_, exists := s.tasks[id]
	if exists {
		delete(s.tasks, id)
		for i, candidate := range s.order {
			if candidate == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
	s.mu.Unlock()
	if !exists {
		writeDetail(w, http.StatusNotFound, "Task not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeInput(w http.ResponseWriter, r *http.Request) (api.TaskInput, bool) {
	var in api.TaskInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return in, false
	}
	if strings.TrimSpace(in.Title) == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "title is required")
		return in, false
	}
	if in.Status != "" && !in.Status.Valid() {
		writeDetail(w, http.StatusUnprocessableEntity, "unknown status")
		return in, false
	}
	return in, true
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
