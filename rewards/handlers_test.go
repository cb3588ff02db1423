package main

import (
	"encoding/json"
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/labstack/echo/v4"
	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
	"kondecoracao/common"
	"kondecoracao/schema"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

const (
	adminID  = "00000000-0000-0000-0000-0000000000a1"
	escudoID = "00000000-0000-0000-0000-0000000000e1"
	anaID    = "00000000-0000-0000-0000-000000000001"
	brunoID  = "00000000-0000-0000-0000-000000000002"
)

type recordingProducer struct {
	mx       sync.Mutex
	messages []*kafka.Message
}

func (p *recordingProducer) Produce(msg *kafka.Message, _ chan kafka.Event) error {
	p.mx.Lock()
	defer p.mx.Unlock()
	p.messages = append(p.messages, msg)
	return nil
}

func (p *recordingProducer) events() []string {
	p.mx.Lock()
	defer p.mx.Unlock()
	var events []string
	for _, msg := range p.messages {
		event, _ := common.GetKafkaHeader(msg, "event")
		events = append(events, event)
	}
	return events
}

type testEnv struct {
	svc       *rewardsSvc
	e         *echo.Echo
	producer  *recordingProducer
	authCalls *int32
}

// newTestEnv starts rewards over in-memory sqlite and Auth stub accepting "Bearer <user id>"
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zaptest.NewLogger(t).Sugar()

	var authCalls int32
	auth := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&authCalls, 1)
		sub := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if sub == "" || sub == "expired" || sub == r.Header.Get("Authorization") {
			http.Error(w, "invalid access token", http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(AuthVerification{PublicId: sub})
	}))
	t.Cleanup(auth.Close)

	db, err := common.OpenDatabase(common.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"}, logger)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Profile{}, &Bonification{}, &Withdrawal{}))

	location, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	producer := &recordingProducer{}
	svc := &rewardsSvc{
		logger:         logger,
		db:             db,
		authServer:     auth.URL,
		authHttpClient: &http.Client{Timeout: time.Second},
		producer:       producer,
		roles:          cache.New(time.Minute, time.Minute),
		metrics:        newRewardsMetrics(prometheus.NewRegistry()),
		location:       location,
		adminEmails:    map[string]bool{"chefe@example.com": true},
		now: func() time.Time {
			return time.Date(2026, time.October, 17, 15, 0, 0, 0, time.UTC)
		},
	}

	e := echo.New()
	svc.routes(e)

	env := &testEnv{svc: svc, e: e, producer: producer, authCalls: &authCalls}
	env.profile(adminID, "Alice", "Diretoria", schema.RoleAdmin)
	env.profile(escudoID, "Eduardo", "RH", schema.RoleEscudo)
	env.profile(anaID, "Ana", "Vendas", schema.RoleColaborador)
	env.profile(brunoID, "Bruno", "Suporte", schema.RoleColaborador)
	return env
}

func (env *testEnv) profile(userID, name, setor string, role schema.Role) {
	err := env.svc.db.Create(&Profile{UserID: userID, FirstName: name, Setor: setor, Role: role}).Error
	if err != nil {
		panic(err)
	}
}

func (env *testEnv) bonification(t *testing.T, userID string, pontos int, createdAt time.Time) {
	t.Helper()
	require.NoError(t, env.svc.db.Create(&Bonification{
		UserID:    userID,
		AwardedBy: escudoID,
		Criterio:  schema.Criteria[0],
		Pontos:    pontos,
		Koins:     pontos * schema.KoinsPerPoint,
		CreatedAt: createdAt,
	}).Error)
}

func (env *testEnv) do(method, target, userID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+userID)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	return decode[map[string]string](t, rec)["error"]
}

func (env *testEnv) countWithdrawals(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, env.svc.db.Model(&Withdrawal{}).Count(&n).Error)
	return n
}

func TestUnauthenticatedRequestsDoNotQuery(t *testing.T) {
	env := newTestEnv(t)

	var queries int32
	count := func(*gorm.DB) { atomic.AddInt32(&queries, 1) }
	require.NoError(t, env.svc.db.Callback().Query().After("gorm:query").Register("test:count_query", count))
	require.NoError(t, env.svc.db.Callback().Row().After("gorm:row").Register("test:count_row", count))

	for _, target := range []string{"/balance/my", "/rank/my", "/totals/my", "/withdrawals/my", "/me"} {
		for _, user := range []string{"", "expired"} {
			rec := env.do(http.MethodGet, target, user, "")
			assert.Equal(t, http.StatusUnauthorized, rec.Code, target)
			assert.Equal(t, "Não autenticado", errorOf(t, rec))
		}
	}
	rec := env.do(http.MethodPost, "/withdrawals", "", `{"amount":10}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	assert.Zero(t, atomic.LoadInt32(&queries))
	// requests without header never reach Auth
	assert.Equal(t, int32(5), atomic.LoadInt32(env.authCalls))
}

func TestBalanceRankAndTotals(t *testing.T) {
	env := newTestEnv(t)
	env.bonification(t, anaID, 10, time.Now().UTC())
	env.bonification(t, anaID, 10, time.Now().UTC())
	env.bonification(t, anaID, 5, time.Now().UTC())

	rec := env.do(http.MethodGet, "/balance/my", anaID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, Balance{UserID: anaID, KoinsBalance: 125, PontosTotal: 25}, decode[Balance](t, rec))

	rec = env.do(http.MethodGet, "/totals/my", anaID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, Totals{UserID: anaID, PontosTotal: 25, KoinsTotal: 125}, decode[Totals](t, rec))

	rec = env.do(http.MethodGet, "/rank/my", anaID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, Rank{UserID: anaID, PatenteLabel: "Cabo", PatenteThreshold: 40}, decode[Rank](t, rec))

	rec = env.do(http.MethodGet, "/balance/my", "11111111-0000-0000-0000-000000000000", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRequestWithdrawalValidation(t *testing.T) {
	env := newTestEnv(t)
	env.bonification(t, anaID, 20, time.Now().UTC()) // 100 koins

	cases := []struct {
		name    string
		body    string
		code    int
		message string
	}{
		{"zero", `{"amount":0}`, http.StatusBadRequest, "Informe um valor válido (> 0)."},
		{"negative", `{"amount":-5}`, http.StatusBadRequest, "Informe um valor válido (> 0)."},
		{"over balance", `{"amount":150}`, http.StatusBadRequest, "Valor solicitado é maior que seu saldo disponível."},
		{"malformed", `{"amount":`, http.StatusBadRequest, "Requisição inválida"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.do(http.MethodPost, "/withdrawals", anaID, tc.body)
			assert.Equal(t, tc.code, rec.Code)
			assert.Equal(t, tc.message, errorOf(t, rec))
		})
	}

	assert.Zero(t, env.countWithdrawals(t))
	assert.Empty(t, env.producer.events())

	rec := env.do(http.MethodGet, "/balance/my", anaID, "")
	assert.Equal(t, 100, decode[Balance](t, rec).KoinsBalance)
}

func TestPendingWithdrawalReservesBalance(t *testing.T) {
	env := newTestEnv(t)
	env.bonification(t, anaID, 20, time.Now().UTC())

	rec := env.do(http.MethodPost, "/withdrawals", anaID, `{"amount":60,"note":" vale-presente "}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	w := decode[Withdrawal](t, rec)
	assert.Equal(t, schema.WithdrawalPending, w.Status)
	require.NotNil(t, w.Note)
	assert.Equal(t, "vale-presente", *w.Note)

	rec = env.do(http.MethodGet, "/balance/my", anaID, "")
	assert.Equal(t, 40, decode[Balance](t, rec).KoinsBalance)

	rec = env.do(http.MethodPost, "/withdrawals", anaID, `{"amount":50}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, int64(1), env.countWithdrawals(t))
}

func TestApproveWithdrawal(t *testing.T) {
	env := newTestEnv(t)
	env.bonification(t, anaID, 20, time.Now().UTC())

	rec := env.do(http.MethodPost, "/withdrawals", anaID, `{"amount":60}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	w1 := decode[Withdrawal](t, rec)

	rec = env.do(http.MethodGet, "/withdrawals/pending", adminID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	pending := decode[[]Withdrawal](t, rec)
	require.Len(t, pending, 1)
	assert.Equal(t, w1.ID, pending[0].ID)
	require.NotNil(t, pending[0].Profile)
	assert.Equal(t, "Ana", pending[0].Profile.FirstName)

	rec = env.do(http.MethodPost, "/withdrawals/"+w1.ID+"/approve", adminID, `{"coupon":"KLC-AB12-CD34"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	approved := decode[Withdrawal](t, rec)
	assert.Equal(t, schema.WithdrawalApproved, approved.Status)
	require.NotNil(t, approved.DecidedBy)
	assert.Equal(t, adminID, *approved.DecidedBy)

	rec = env.do(http.MethodGet, "/withdrawals/pending", adminID, "")
	assert.Empty(t, decode[[]Withdrawal](t, rec))

	rec = env.do(http.MethodGet, "/withdrawals/my", anaID, "")
	history := decode[[]Withdrawal](t, rec)
	require.Len(t, history, 1)
	assert.Equal(t, schema.WithdrawalApproved, history[0].Status)
	require.NotNil(t, history[0].Coupon)
	assert.Equal(t, "KLC-AB12-CD34", *history[0].Coupon)

	rec = env.do(http.MethodGet, "/balance/my", anaID, "")
	assert.Equal(t, 40, decode[Balance](t, rec).KoinsBalance)

	rec = env.do(http.MethodPost, "/withdrawals/"+w1.ID+"/approve", adminID, `{"coupon":"KLC-ZZZZ-ZZZZ"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = env.do(http.MethodPost, "/withdrawals/"+w1.ID+"/deny", adminID, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	assert.Equal(t, []string{schema.EventWithdrawalRequested, schema.EventWithdrawalApproved}, env.producer.events())
	var event schema.WithdrawalEvent
	require.NoError(t, event.Unmarshal(env.producer.messages[1].Value))
	assert.Equal(t, "Ana", event.FirstName)
	assert.Equal(t, "approved", event.Status)
	require.NotNil(t, event.Coupon)
	assert.Equal(t, "KLC-AB12-CD34", *event.Coupon)

	assert.Equal(t, 1.0, testutil.ToFloat64(env.svc.metrics.withdrawals.WithLabelValues("approved")))
}

func TestApproveGeneratesCouponAndRejectsReuse(t *testing.T) {
	env := newTestEnv(t)
	env.bonification(t, anaID, 20, time.Now().UTC())
	env.bonification(t, brunoID, 20, time.Now().UTC())

	w1 := decode[Withdrawal](t, env.do(http.MethodPost, "/withdrawals", anaID, `{"amount":10}`))
	w2 := decode[Withdrawal](t, env.do(http.MethodPost, "/withdrawals", brunoID, `{"amount":10}`))

	rec := env.do(http.MethodPost, "/withdrawals/"+w1.ID+"/approve", adminID, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	coupon := decode[Withdrawal](t, rec).Coupon
	require.NotNil(t, coupon)
	assert.Regexp(t, `^KLC-[A-Z0-9]{4}-[A-Z0-9]{4}$`, *coupon)

	rec = env.do(http.MethodPost, "/withdrawals/"+w2.ID+"/approve", adminID, `{"coupon":"`+*coupon+`"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Cupom já utilizado.", errorOf(t, rec))

	rec = env.do(http.MethodPost, "/withdrawals/unknown/approve", adminID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDenyWithdrawalReleasesBalance(t *testing.T) {
	env := newTestEnv(t)
	env.bonification(t, anaID, 20, time.Now().UTC())

	w := decode[Withdrawal](t, env.do(http.MethodPost, "/withdrawals", anaID, `{"amount":50}`))

	rec := env.do(http.MethodPost, "/withdrawals/"+w.ID+"/deny", adminID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	denied := decode[Withdrawal](t, rec)
	assert.Equal(t, schema.WithdrawalDenied, denied.Status)
	assert.Nil(t, denied.Coupon)

	rec = env.do(http.MethodGet, "/withdrawals/pending", adminID, "")
	assert.Empty(t, decode[[]Withdrawal](t, rec))

	rec = env.do(http.MethodGet, "/balance/my", anaID, "")
	assert.Equal(t, 100, decode[Balance](t, rec).KoinsBalance)

	rec = env.do(http.MethodPost, "/withdrawals/"+w.ID+"/approve", adminID, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestWithdrawalDecisionsRequireAdmin(t *testing.T) {
	env := newTestEnv(t)
	env.bonification(t, anaID, 20, time.Now().UTC())
	w := decode[Withdrawal](t, env.do(http.MethodPost, "/withdrawals", anaID, `{"amount":10}`))

	for _, user := range []string{anaID, escudoID} {
		assert.Equal(t, http.StatusForbidden, env.do(http.MethodGet, "/withdrawals/pending", user, "").Code)
		assert.Equal(t, http.StatusForbidden, env.do(http.MethodPost, "/withdrawals/"+w.ID+"/approve", user, "").Code)
		assert.Equal(t, http.StatusForbidden, env.do(http.MethodPost, "/withdrawals/"+w.ID+"/deny", user, "").Code)
	}
	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodGet, "/withdrawals/pending", "", "").Code)

	rec := env.do(http.MethodGet, "/withdrawals/my", anaID, "")
	assert.Equal(t, schema.WithdrawalPending, decode[[]Withdrawal](t, rec)[0].Status)
}

func TestAwardPoints(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/awards", escudoID,
		`{"user_id":"`+anaID+`","criterio":"Trabalho em equipe","pontos":3,"motivo":"ajudou no inventário"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	b := decode[Bonification](t, rec)
	assert.Equal(t, 15, b.Koins)
	assert.Equal(t, escudoID, b.AwardedBy)

	rec = env.do(http.MethodGet, "/balance/my", anaID, "")
	assert.Equal(t, Balance{UserID: anaID, KoinsBalance: 15, PontosTotal: 3}, decode[Balance](t, rec))

	assert.Equal(t, 3.0, testutil.ToFloat64(env.svc.metrics.pointsAwarded))
	assert.Equal(t, 15.0, testutil.ToFloat64(env.svc.metrics.koinsAwarded))

	require.Equal(t, []string{schema.EventBonificationCreated}, env.producer.events())
	var event schema.BonificationEvent
	require.NoError(t, event.Unmarshal(env.producer.messages[0].Value))
	assert.Equal(t, "Ana", event.FirstName)
	assert.Equal(t, 3, event.Pontos)
	require.NotNil(t, event.Motivo)
	assert.Equal(t, "ajudou no inventário", *event.Motivo)

	cases := []struct {
		name string
		user string
		body string
		code int
	}{
		{"self award", escudoID, `{"user_id":"` + escudoID + `","criterio":"Inovação","pontos":3}`, http.StatusBadRequest},
		{"too many points", adminID, `{"user_id":"` + anaID + `","criterio":"Inovação","pontos":11}`, http.StatusBadRequest},
		{"no points", adminID, `{"user_id":"` + anaID + `","criterio":"Inovação","pontos":0}`, http.StatusBadRequest},
		{"no criterio", adminID, `{"user_id":"` + anaID + `","criterio":"  ","pontos":2}`, http.StatusBadRequest},
		{"unknown target", adminID, `{"user_id":"nobody","criterio":"Inovação","pontos":2}`, http.StatusNotFound},
		{"colaborador", brunoID, `{"user_id":"` + anaID + `","criterio":"Inovação","pontos":2}`, http.StatusForbidden},
		{"anonymous", "", `{"user_id":"` + anaID + `","criterio":"Inovação","pontos":2}`, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.code, env.do(http.MethodPost, "/awards", tc.user, tc.body).Code)
		})
	}
	assert.Len(t, env.producer.events(), 1)
}

func TestRankingMensal(t *testing.T) {
	env := newTestEnv(t)
	env.bonification(t, anaID, 5, time.Date(2026, time.October, 2, 12, 0, 0, 0, time.UTC))
	env.bonification(t, brunoID, 9, time.Date(2026, time.October, 10, 12, 0, 0, 0, time.UTC))
	env.bonification(t, anaID, 6, time.Date(2026, time.October, 16, 12, 0, 0, 0, time.UTC))
	env.bonification(t, escudoID, 10, time.Date(2026, time.September, 20, 12, 0, 0, 0, time.UTC))
	// September 30th 23:00 in São Paulo
	env.bonification(t, escudoID, 10, time.Date(2026, time.October, 1, 2, 0, 0, 0, time.UTC))

	rec := env.do(http.MethodGet, "/ranking/monthly", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rows := decode[[]RankingRow](t, rec)

	require.Len(t, rows, 2)
	assert.Equal(t, anaID, rows[0].UserID)
	assert.Equal(t, 11, rows[0].PontosMes)
	assert.Equal(t, 55, rows[0].KoinsMes)
	assert.Equal(t, &ProfileRef{UserID: anaID, FirstName: "Ana", Setor: "Vendas"}, rows[0].Profile)
	assert.Equal(t, brunoID, rows[1].UserID)
	assert.Equal(t, 9, rows[1].PontosMes)
	for i := 1; i < len(rows); i++ {
		assert.GreaterOrEqual(t, rows[i-1].PontosMes, rows[i].PontosMes)
	}
}

func TestRankingMensalTiesOrderedByUserID(t *testing.T) {
	env := newTestEnv(t)
	env.bonification(t, escudoID, 7, time.Date(2026, time.October, 3, 12, 0, 0, 0, time.UTC))
	env.bonification(t, brunoID, 3, time.Date(2026, time.October, 4, 12, 0, 0, 0, time.UTC))
	env.bonification(t, brunoID, 4, time.Date(2026, time.October, 5, 12, 0, 0, 0, time.UTC))
	env.bonification(t, anaID, 7, time.Date(2026, time.October, 6, 12, 0, 0, 0, time.UTC))
	env.bonification(t, adminID, 8, time.Date(2026, time.October, 7, 12, 0, 0, 0, time.UTC))

	rec := env.do(http.MethodGet, "/ranking/monthly", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rows := decode[[]RankingRow](t, rec)

	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.UserID)
	}
	assert.Equal(t, []string{adminID, anaID, brunoID, escudoID}, ids)
	assert.Equal(t, 7, rows[1].PontosMes)
	assert.Equal(t, 7, rows[3].PontosMes)
}

func TestMe(t *testing.T) {
	env := newTestEnv(t)

	me := decode[Me](t, env.do(http.MethodGet, "/me", adminID, ""))
	assert.True(t, me.IsAdmin)
	assert.False(t, me.IsEscudo)
	require.NotNil(t, me.Profile)
	assert.Equal(t, "Alice", me.Profile.FirstName)

	me = decode[Me](t, env.do(http.MethodGet, "/me", escudoID, ""))
	assert.False(t, me.IsAdmin)
	assert.True(t, me.IsEscudo)

	me = decode[Me](t, env.do(http.MethodGet, "/me", "not-provisioned", ""))
	assert.Equal(t, Me{UserID: "not-provisioned"}, me)
}

func TestProfilesRoster(t *testing.T) {
	env := newTestEnv(t)
	env.bonification(t, anaID, 10, time.Now().UTC())
	decode[Withdrawal](t, env.do(http.MethodPost, "/withdrawals", anaID, `{"amount":20}`))

	rec := env.do(http.MethodGet, "/profiles", escudoID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	roster := decode[[]RosterEntry](t, rec)
	var names []string
	for _, r := range roster {
		names = append(names, r.FirstName)
	}
	assert.Equal(t, []string{"Alice", "Ana", "Bruno", "Eduardo"}, names)
	assert.Equal(t, 10, roster[1].PontosTotal)
	assert.Equal(t, 50, roster[1].KoinsTotal)
	assert.Equal(t, 30, roster[1].KoinsBalance)
	assert.Equal(t, "Soldado", roster[1].PatenteLabel)

	rec = env.do(http.MethodGet, "/profiles?q=SUP", adminID, "")
	roster = decode[[]RosterEntry](t, rec)
	require.Len(t, roster, 1)
	assert.Equal(t, brunoID, roster[0].UserID)

	rec = env.do(http.MethodGet, "/profiles?q=escudo", adminID, "")
	require.Len(t, decode[[]RosterEntry](t, rec), 1)

	rec = env.do(http.MethodGet, "/profiles?awardable=true", escudoID, "")
	for _, r := range decode[[]RosterEntry](t, rec) {
		assert.NotEqual(t, escudoID, r.UserID)
	}

	assert.Equal(t, http.StatusForbidden, env.do(http.MethodGet, "/profiles", anaID, "").Code)
}

func TestUpsertProfileRefreshesRole(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, http.StatusForbidden, env.do(http.MethodGet, "/withdrawals/pending", brunoID, "").Code)

	rec := env.do(http.MethodPost, "/profiles", adminID,
		`{"user_id":"`+brunoID+`","first_name":"Bruno","setor":"Financeiro","role":"admin"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	p := decode[Profile](t, rec)
	assert.Equal(t, schema.RoleAdmin, p.Role)
	assert.Equal(t, "Financeiro", p.Setor)

	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/withdrawals/pending", brunoID, "").Code)

	rec = env.do(http.MethodPost, "/profiles", adminID, `{"user_id":"new-user","first_name":"Carla"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, schema.RoleColaborador, decode[Profile](t, rec).Role)

	assert.Equal(t, http.StatusBadRequest,
		env.do(http.MethodPost, "/profiles", adminID, `{"user_id":"x","first_name":"X","role":"rei"}`).Code)
	assert.Equal(t, http.StatusBadRequest,
		env.do(http.MethodPost, "/profiles", adminID, `{"user_id":"x"}`).Code)
	assert.Equal(t, http.StatusForbidden,
		env.do(http.MethodPost, "/profiles", escudoID, `{"user_id":"x","first_name":"X"}`).Code)
}

func TestCriteria(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodGet, "/criteria", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[struct {
		Criterios []string `json:"criterios"`
		Max       int      `json:"max_pontos"`
	}](t, rec)
	assert.Len(t, body.Criterios, 7)
	assert.Equal(t, 10, body.Max)
}
