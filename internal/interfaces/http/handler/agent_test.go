package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appagent "github.com/vansales/backend/internal/application/agent"
	appidentity "github.com/vansales/backend/internal/application/identity"
	appinventory "github.com/vansales/backend/internal/application/inventory"
	apppartner "github.com/vansales/backend/internal/application/partner"
	apptrade "github.com/vansales/backend/internal/application/trade"
	domainagent "github.com/vansales/backend/internal/domain/agent"
	"github.com/vansales/backend/internal/domain/identity"
	"github.com/vansales/backend/internal/domain/inventory"
	"github.com/vansales/backend/internal/domain/partner"
	"github.com/vansales/backend/internal/domain/shared"
	"github.com/vansales/backend/internal/domain/trade"
	"github.com/vansales/backend/internal/infrastructure/auth"
	"github.com/vansales/backend/internal/infrastructure/config"
	"github.com/vansales/backend/internal/infrastructure/persistence"
	"github.com/vansales/backend/internal/interfaces/http/handler"
	"github.com/vansales/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type apiFixture struct {
	engine   *gin.Engine
	db       *gorm.DB
	jwt      *auth.JWTService
	tenantID uuid.UUID
}

func setupAPI(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&identity.User{}, &identity.Branch{},
		&partner.Customer{},
		&trade.Order{}, &trade.OrderLine{},
		&inventory.InventoryItem{}, &inventory.VehicleStockItem{}, &inventory.InventoryTransaction{},
		&domainagent.Action{}, &domainagent.AuditEntry{},
	))

	cfg := &config.Config{
		JWT: config.JWTConfig{
			Secret:                "test-secret-key-at-least-32-characters",
			AccessTokenExpiration: time.Hour,
			Issuer:                "vansales-test",
		},
		Agent: config.AgentConfig{
			ConfirmTTL:       time.Minute,
			ExecutionTimeout: 5 * time.Second,
			DedupTTL:         time.Hour,
		},
	}
	jwtService := auth.NewJWTService(cfg.JWT)

	registry, err := appagent.BuildRegistry()
	require.NoError(t, err)
	executor := appagent.NewExecutor()
	actions := persistence.NewActionRepository(db)
	audit := persistence.NewBestEffortAuditLogger(persistence.NewAuditRepository(db))

	h := router.Handlers{
		System: handler.NewSystemHandler(db),
		Auth:   handler.NewAuthHandler(appidentity.NewAuthService(db, jwtService, nil)),
		Agent: handler.NewAgentHandler(
			appagent.NewDispatchService(db, actions, registry, executor, nil, audit, cfg.Agent),
			appagent.NewConfirmationService(db, actions, registry, executor, audit, cfg.Agent),
			registry,
		),
		Customer:  handler.NewCustomerHandler(apppartner.NewCustomerService(db)),
		Order:     handler.NewOrderHandler(apptrade.NewOrderService(db)),
		Inventory: handler.NewInventoryHandler(appinventory.NewInventoryService(db)),
		Identity:  handler.NewIdentityHandler(appidentity.NewUserService(db)),
	}

	engine := router.New(router.Dependencies{
		Config:     cfg,
		Logger:     zap.NewNop(),
		JWTService: jwtService,
	}, h)

	return &apiFixture{engine: engine, db: db, jwt: jwtService, tenantID: uuid.New()}
}

func (f *apiFixture) token(t *testing.T, role shared.Role) string {
	t.Helper()
	token, _, err := f.jwt.GenerateToken(auth.GenerateTokenInput{
		TenantID: f.tenantID,
		UserID:   uuid.New(),
		Username: "tester",
		Role:     string(role),
	})
	require.NoError(t, err)
	return token
}

func (f *apiFixture) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestHealthEndpointIsPublic(t *testing.T) {
	f := setupAPI(t)
	rec := f.request(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIRequiresToken(t *testing.T) {
	f := setupAPI(t)
	rec := f.request(t, http.MethodPost, "/api/v1/agent/dispatch", "", gin.H{})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	env := decode(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)
}

func TestLoginIssuesUsableToken(t *testing.T) {
	f := setupAPI(t)

	hash, err := appidentity.HashPassword("password123")
	require.NoError(t, err)
	user, err := identity.NewUser(f.tenantID, "driver1", hash, shared.RoleDriver)
	require.NoError(t, err)
	require.NoError(t, f.db.Create(user).Error)

	rec := f.request(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"tenantId": f.tenantID,
		"username": "driver1",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Token string `json:"token"`
	}
	env := decode(t, rec)
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	require.NotEmpty(t, resp.Token)

	rec = f.request(t, http.MethodGet, "/api/v1/agent/capabilities", resp.Token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDispatchReadOnlyCapability(t *testing.T) {
	f := setupAPI(t)
	customer, err := partner.NewCustomer(f.tenantID, "C-100", "Corner Shop")
	require.NoError(t, err)
	require.NoError(t, f.db.Create(customer).Error)

	rec := f.request(t, http.MethodPost, "/api/v1/agent/dispatch", f.token(t, shared.RoleManager), gin.H{
		"conversationId": uuid.New(),
		"toolCalls": []gin.H{
			{"name": "list_customers", "arguments": "{}"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		ExecutedActions []struct {
			Status string  `json:"status"`
			Result *string `json:"result"`
		} `json:"executedActions"`
		ProposedActions []struct {
			ID uuid.UUID `json:"id"`
		} `json:"proposedActions"`
		Skipped int `json:"skipped"`
	}
	env := decode(t, rec)
	require.NoError(t, json.Unmarshal(env.Data, &result))
	require.Len(t, result.ExecutedActions, 1)
	assert.Empty(t, result.ProposedActions)
	assert.Equal(t, "EXECUTED", result.ExecutedActions[0].Status)
	require.NotNil(t, result.ExecutedActions[0].Result)
	assert.Contains(t, *result.ExecutedActions[0].Result, "Corner Shop")
}

func TestProposeConfirmFlow(t *testing.T) {
	f := setupAPI(t)
	token := f.token(t, shared.RoleManager)
	customer, err := partner.NewCustomer(f.tenantID, "C-200", "Bakery")
	require.NoError(t, err)
	require.NoError(t, f.db.Create(customer).Error)

	args, err := json.Marshal(gin.H{
		"customerId": customer.ID,
		"lines": []gin.H{
			{"sku": "SKU-1", "name": "Bread", "quantity": 2, "unitPrice": 3},
		},
	})
	require.NoError(t, err)

	rec := f.request(t, http.MethodPost, "/api/v1/agent/dispatch", token, gin.H{
		"conversationId": uuid.New(),
		"toolCalls": []gin.H{
			{"name": "create_order", "arguments": string(args)},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		ProposedActions []struct {
			ID     uuid.UUID `json:"id"`
			Status string    `json:"status"`
		} `json:"proposedActions"`
	}
	env := decode(t, rec)
	require.NoError(t, json.Unmarshal(env.Data, &result))
	require.Len(t, result.ProposedActions, 1)
	require.Equal(t, "PROPOSED", result.ProposedActions[0].Status)
	actionID := result.ProposedActions[0].ID

	rec = f.request(t, http.MethodPost, "/api/v1/agent/actions/"+actionID.String()+"/confirm", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var confirmed struct {
		Status string `json:"status"`
	}
	env = decode(t, rec)
	require.NoError(t, json.Unmarshal(env.Data, &confirmed))
	assert.Equal(t, "EXECUTED", confirmed.Status)

	var orderCount int64
	require.NoError(t, f.db.Model(&trade.Order{}).Count(&orderCount).Error)
	assert.Equal(t, int64(1), orderCount)

	// a second confirm finds the action already decided
	rec = f.request(t, http.MethodPost, "/api/v1/agent/actions/"+actionID.String()+"/confirm", token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	env = decode(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "ACTION_CONFLICT", env.Error.Code)
}

func TestConfirmForeignActionNotFound(t *testing.T) {
	f := setupAPI(t)
	token := f.token(t, shared.RoleManager)

	args, err := json.Marshal(gin.H{
		"branchId": uuid.New(),
		"sku":      "SKU-1",
		"delta":    -1,
		"reason":   "damage",
	})
	require.NoError(t, err)

	rec := f.request(t, http.MethodPost, "/api/v1/agent/dispatch", token, gin.H{
		"conversationId": uuid.New(),
		"toolCalls":      []gin.H{{"name": "adjust_inventory", "arguments": string(args)}},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var result struct {
		ProposedActions []struct {
			ID uuid.UUID `json:"id"`
		} `json:"proposedActions"`
	}
	env := decode(t, rec)
	require.NoError(t, json.Unmarshal(env.Data, &result))
	require.Len(t, result.ProposedActions, 1)

	// same action ID under a different tenant's token
	otherTenant := &apiFixture{engine: f.engine, db: f.db, jwt: f.jwt, tenantID: uuid.New()}
	rec = f.request(t, http.MethodPost,
		"/api/v1/agent/actions/"+result.ProposedActions[0].ID.String()+"/confirm",
		otherTenant.token(t, shared.RoleManager), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCapabilitiesCatalog(t *testing.T) {
	f := setupAPI(t)
	rec := f.request(t, http.MethodGet, "/api/v1/agent/capabilities", f.token(t, shared.RoleDriver), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var catalog []struct {
		Name     string `json:"name"`
		ReadOnly bool   `json:"readOnly"`
	}
	env := decode(t, rec)
	require.NoError(t, json.Unmarshal(env.Data, &catalog))
	require.Len(t, catalog, 7)

	// sorted by name, classification present both ways
	names := make([]string, 0, len(catalog))
	readOnly := 0
	for _, c := range catalog {
		names = append(names, c.Name)
		if c.ReadOnly {
			readOnly++
		}
	}
	assert.IsNonDecreasing(t, names)
	assert.Equal(t, 4, readOnly)
}

func TestCustomerCRUDOverHTTP(t *testing.T) {
	f := setupAPI(t)
	token := f.token(t, shared.RoleManager)

	rec := f.request(t, http.MethodPost, "/api/v1/customers", token, gin.H{
		"code": "C-300",
		"name": "Kiosk",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		ID uuid.UUID `json:"id"`
	}
	env := decode(t, rec)
	require.NoError(t, json.Unmarshal(env.Data, &created))

	rec = f.request(t, http.MethodGet, "/api/v1/customers/"+created.ID.String(), token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// another tenant cannot see the customer
	otherTenant := &apiFixture{engine: f.engine, db: f.db, jwt: f.jwt, tenantID: uuid.New()}
	rec = f.request(t, http.MethodGet, "/api/v1/customers/"+created.ID.String(),
		otherTenant.token(t, shared.RoleManager), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
