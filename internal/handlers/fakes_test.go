package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/harentsoaR/hospital-staff-api/internal/config"
	"github.com/harentsoaR/hospital-staff-api/internal/middleware"
	"github.com/harentsoaR/hospital-staff-api/internal/models"
	"github.com/harentsoaR/hospital-staff-api/internal/response"
	"github.com/harentsoaR/hospital-staff-api/internal/store"
	"github.com/harentsoaR/hospital-staff-api/internal/utils"
)

// fakeDoctorStore mirrors the Mongo store, including the unique email index.
type fakeDoctorStore struct {
	mu    sync.Mutex
	docs  map[primitive.ObjectID]*models.Doctor
	order []primitive.ObjectID
	err   error
}

func newFakeDoctorStore() *fakeDoctorStore {
	return &fakeDoctorStore{docs: make(map[primitive.ObjectID]*models.Doctor)}
}

func (s *fakeDoctorStore) emailTaken(email string, except primitive.ObjectID) bool {
	for id, d := range s.docs {
		if d.Email == email && id != except {
			return true
		}
	}
	return false
}

func (s *fakeDoctorStore) Create(_ context.Context, d *models.Doctor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if s.emailTaken(d.Email, primitive.NilObjectID) {
		return store.ErrDuplicate
	}
	if d.ID.IsZero() {
		d.ID = primitive.NewObjectID()
	}
	cp := *d
	s.docs[d.ID] = &cp
	s.order = append(s.order, d.ID)
	return nil
}

func (s *fakeDoctorStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Doctor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	d, ok := s.docs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (s *fakeDoctorStore) FindByEmail(_ context.Context, email string) (*models.Doctor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	for _, d := range s.docs {
		if d.Email == email {
			cp := *d
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func (s *fakeDoctorStore) List(_ context.Context, f store.DoctorFilter, skip, limit int64) ([]models.Doctor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := []models.Doctor{}
	var seen int64
	for _, id := range s.order {
		d, ok := s.docs[id]
		if !ok {
			continue
		}
		if f.Status != "" && d.Status != f.Status ||
			f.Role != "" && d.Role != f.Role ||
			f.Specialization != "" && d.Specialization != f.Specialization ||
			f.City != "" && d.City != f.City {
			continue
		}
		if f.FirstName != "" || f.LastName != "" {
			first := f.FirstName != "" && containsFold(d.FirstName, f.FirstName)
			last := f.LastName != "" && containsFold(d.LastName, f.LastName)
			if !first && !last {
				continue
			}
		}
		seen++
		if seen <= skip {
			continue
		}
		cp := *d
		cp.Password = ""
		out = append(out, cp)
		if limit > 0 && int64(len(out)) == limit {
			break
		}
	}
	return out, nil
}

func (s *fakeDoctorStore) Update(_ context.Context, id primitive.ObjectID, u models.DoctorUpdate) (*models.Doctor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if u.Email != nil && s.emailTaken(*u.Email, id) {
		return nil, store.ErrDuplicate
	}
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&d.FirstName, u.FirstName)
	set(&d.LastName, u.LastName)
	set(&d.Email, u.Email)
	set(&d.Password, u.Password)
	set(&d.Role, u.Role)
	set(&d.Status, u.Status)
	set(&d.Adresse, u.Adresse)
	set(&d.City, u.City)
	set(&d.Phone, u.Phone)
	set(&d.Specialization, u.Specialization)
	set(&d.Avatar, u.Avatar)
	if u.Schedule != nil {
		d.Schedule = *u.Schedule
	}
	cp := *d
	return &cp, nil
}

func (s *fakeDoctorStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.docs, id)
	return nil
}

func (s *fakeDoctorStore) SetResetToken(_ context.Context, id primitive.ObjectID, hash string, expires time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[id]
	if !ok {
		return store.ErrNotFound
	}
	d.ResetPasswordToken = hash
	d.ResetPasswordExpires = &expires
	return nil
}

func (s *fakeDoctorStore) holder(hash string, now time.Time) *models.Doctor {
	for _, d := range s.docs {
		if d.ResetPasswordToken == hash && d.ResetPasswordExpires != nil && d.ResetPasswordExpires.After(now) {
			return d
		}
	}
	return nil
}

func (s *fakeDoctorStore) CheckResetToken(_ context.Context, hash string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.holder(hash, now) == nil {
		return store.ErrNotFound
	}
	return nil
}

func (s *fakeDoctorStore) ConsumeResetToken(_ context.Context, hash string, now time.Time, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.holder(hash, now)
	if d == nil {
		return store.ErrNotFound
	}
	d.Password = passwordHash
	d.ResetPasswordToken = ""
	d.ResetPasswordExpires = nil
	return nil
}

func (s *fakeDoctorStore) get(id primitive.ObjectID) *models.Doctor {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[id]
	if !ok {
		return nil
	}
	cp := *d
	return &cp
}

type fakeNurseStore struct {
	mu     sync.Mutex
	nurses map[string]*models.Nurse
}

func (s *fakeNurseStore) Create(_ context.Context, n *models.Nurse) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.nurses[n.Email]; ok {
		return store.ErrDuplicate
	}
	cp := *n
	s.nurses[n.Email] = &cp
	return nil
}

func (s *fakeNurseStore) FindByEmail(_ context.Context, email string) (*models.Nurse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nurses[email]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *n
	return &cp, nil
}

type fakeAppointmentStore struct {
	appointments []models.Appointment
	upcoming     []models.AppointmentDetail
	patients     []models.Person
	nurses       []models.Person
	err          error

	upcomingFrom time.Time
}

func (s *fakeAppointmentStore) ListByDoctor(_ context.Context, doctorID primitive.ObjectID) ([]models.Appointment, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []models.Appointment
	for _, a := range s.appointments {
		if a.DoctorID == doctorID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *fakeAppointmentStore) Upcoming(_ context.Context, _ primitive.ObjectID, from time.Time) ([]models.AppointmentDetail, error) {
	s.upcomingFrom = from
	return s.upcoming, s.err
}

func (s *fakeAppointmentStore) Participants(_ context.Context, _ primitive.ObjectID) ([]models.Person, []models.Person, error) {
	return s.patients, s.nurses, s.err
}

type sentReset struct {
	to  string
	url string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentReset
	err  error
}

func (n *fakeNotifier) SendPasswordReset(_ context.Context, to, resetURL string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentReset{to: to, url: resetURL})
	return n.err
}

func (n *fakeNotifier) last(t *testing.T) sentReset {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	require.NotEmpty(t, n.sent)
	return n.sent[len(n.sent)-1]
}

// countingHasher records how often a password was hashed.
type countingHasher struct {
	*utils.PasswordHasher
	hashes int
}

func (h *countingHasher) Hash(password string) (string, error) {
	h.hashes++
	return h.PasswordHasher.Hash(password)
}

type fakeAvatars struct{}

func (fakeAvatars) Save(_ context.Context, file *multipart.FileHeader) (string, error) {
	return "uploads/" + file.Filename, nil
}

// testEnv wires a Handler to in-memory stores behind the real route table.
type testEnv struct {
	h       *Handler
	r       *gin.Engine
	doctors *fakeDoctorStore
	nurses  *fakeNurseStore
	appts   *fakeAppointmentStore
	mail    *fakeNotifier
	tokens  *utils.TokenIssuer
	hasher  *utils.PasswordHasher
	now     time.Time
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log, _ := test.NewNullLogger()

	cfg := &config.Config{
		RequestTimeout: 5 * time.Second,
		ResetTokenTTL:  time.Hour,
		Upload:         config.Upload{DefaultAvatar: "pics/default.png"},
	}
	env := &testEnv{
		doctors: newFakeDoctorStore(),
		nurses:  &fakeNurseStore{nurses: make(map[string]*models.Nurse)},
		appts:   &fakeAppointmentStore{},
		mail:    &fakeNotifier{},
		tokens:  utils.NewTokenIssuer("test-secret", time.Hour),
		hasher:  utils.NewPasswordHasher(bcrypt.MinCost),
		now:     time.Now(),
	}
	env.h = NewHandler(cfg, env.doctors, env.nurses, env.appts, env.hasher, env.tokens, env.mail, fakeAvatars{})
	env.h.now = func() time.Time { return env.now }

	resp := response.NewResponder(log)
	env.r = gin.New()
	env.r.Use(resp.Recovery())
	env.h.RegisterRoutes(env.r, RouteDeps{
		Responder: resp,
		Auth:      middleware.AuthMiddleware(env.tokens, resp),
	})
	return env
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e envelope) into(t *testing.T, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(e.Data, v))
}

func (env *testEnv) send(t *testing.T, req *http.Request, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	env.r.ServeHTTP(w, req)

	var out envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return w, out
}

// do sends body as JSON; a string body is sent verbatim.
func (env *testEnv) do(t *testing.T, method, path string, body any, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rdr)
	if rdr != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return env.send(t, req, token)
}

func (env *testEnv) seedDoctor(t *testing.T, d models.Doctor, password string) *models.Doctor {
	t.Helper()
	hash, err := env.hasher.Hash(password)
	require.NoError(t, err)
	d.Password = hash
	if d.Role == "" {
		d.Role = models.RoleDoctor
	}
	if d.Status == "" {
		d.Status = models.StatusApproved
	}
	require.NoError(t, env.doctors.Create(context.Background(), &d))
	return &d
}

func (env *testEnv) seedNurse(t *testing.T, email, password string) *models.Nurse {
	t.Helper()
	hash, err := env.hasher.Hash(password)
	require.NoError(t, err)
	n := &models.Nurse{ID: primitive.NewObjectID(), FirstName: "Nina", LastName: "Ward", Email: email, Password: hash, Role: models.RoleNurse}
	require.NoError(t, env.nurses.Create(context.Background(), n))
	return n
}

func (env *testEnv) token(t *testing.T, email string, id primitive.ObjectID, role string) string {
	t.Helper()
	tok, err := env.tokens.Issue(email, id.Hex(), role)
	require.NoError(t, err)
	return tok
}

func (env *testEnv) tokenFor(t *testing.T, d *models.Doctor) string {
	return env.token(t, d.Email, d.ID, d.Role)
}

func multipartRequest(t *testing.T, path string, fields map[string]string, fileField, fileName string, file []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileField != "" {
		fw, err := mw.CreateFormFile(fileField, fileName)
		require.NoError(t, err)
		_, err = fw.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

var errBoom = errors.New("boom")
