package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/amirphl/radio-contracts/app/dto"
	businessflow "github.com/amirphl/radio-contracts/business_flow"
	"github.com/amirphl/radio-contracts/models"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string `json:"code"`
		Details any    `json:"details"`
	} `json:"error"`
}

type stubContractFlow struct {
	businessflow.ContractFlow
	err       error
	listReq   *dto.ListContractsRequest
	cancelReq *dto.CancelContractRequest
	actor     *businessflow.Identity
}

func (s *stubContractFlow) ListContracts(_ context.Context, actor *businessflow.Identity, req *dto.ListContractsRequest) (*dto.ListContractsResponse, error) {
	s.actor = actor
	s.listReq = req
	if s.err != nil {
		return nil, s.err
	}
	return &dto.ListContractsResponse{Contracts: []dto.ContractDTO{}, Pagination: dto.NewPaginationInfo(0, req.Page, req.Limit)}, nil
}

func (s *stubContractFlow) GetContract(_ context.Context, _ *businessflow.Identity, id uint) (*dto.ContractDetailResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.ContractDetailResponse{Contract: dto.ContractDTO{ID: id, ContractNumber: "CT20260001"}}, nil
}

func (s *stubContractFlow) CreateContract(_ context.Context, _ *businessflow.Identity, req *dto.CreateContractRequest, _ *businessflow.ClientMetadata) (*dto.ContractDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.ContractDTO{ID: 1, ContractNumber: "CT20260001", Title: req.Title, Status: "draft"}, nil
}

func (s *stubContractFlow) CompleteContract(_ context.Context, _ *businessflow.Identity, id uint, _ *businessflow.ClientMetadata) (*dto.ContractDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.ContractDTO{ID: id, Status: "completed"}, nil
}

func (s *stubContractFlow) CancelContract(_ context.Context, _ *businessflow.Identity, id uint, req *dto.CancelContractRequest, _ *businessflow.ClientMetadata) (*dto.ContractDTO, error) {
	s.cancelReq = req
	if s.err != nil {
		return nil, s.err
	}
	return &dto.ContractDTO{ID: id, Status: "cancelled", CancellationReason: req.Reason}, nil
}

func (s *stubContractFlow) ExportContracts(_ context.Context, _ *businessflow.Identity, req *dto.ListContractsRequest) (*dto.ExportFile, error) {
	s.listReq = req
	if s.err != nil {
		return nil, s.err
	}
	return &dto.ExportFile{FileName: "contracts_20260101_120000.xlsx", ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", Data: []byte("xlsx")}, nil
}

type stubAuthFlow struct {
	businessflow.AuthFlow
	err error
}

func (s *stubAuthFlow) Login(_ context.Context, req *dto.LoginRequest, _ *businessflow.ClientMetadata) (*dto.LoginResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.LoginResponse{Token: "token", TokenType: "Bearer", User: dto.UserDTO{Username: req.Username}}, nil
}

type stubClientFlow struct {
	businessflow.ClientFlow
	err error
}

func (s *stubClientFlow) CreateClient(_ context.Context, _ *businessflow.Identity, req *dto.CreateClientRequest, _ *businessflow.ClientMetadata) (*dto.ClientDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.ClientDTO{ID: 1, CompanyName: req.CompanyName}, nil
}

var testManager = &businessflow.Identity{ID: 2, Username: "manager", Role: models.RoleManager}

func newTestApp(identity *businessflow.Identity) *fiber.App {
	app := fiber.New()
	app.Use(func(c fiber.Ctx) error {
		if identity != nil {
			c.Locals("identity", identity)
		}
		return c.Next()
	})
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, apiResponse) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out apiResponse
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), fiber.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp, out
}

func validContractBody() map[string]any {
	return map[string]any{
		"client_id":           1,
		"program_id":          1,
		"ad_type_id":          1,
		"title":               "Campanha de Natal",
		"start_date":          "2026-01-01",
		"end_date":            "2026-01-31",
		"total_spots":         10,
		"price_per_spot":      "100.00",
		"discount_percentage": "10",
	}
}

func TestHandleFlowErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", businessflow.ErrContractNotFound, fiber.StatusNotFound, "CONTRACT_NOT_FOUND"},
		{"forbidden", businessflow.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
		{"unauthenticated", businessflow.ErrUnauthenticated, fiber.StatusUnauthorized, "AUTHENTICATION_REQUIRED"},
		{"wrapped not found", businessflow.NewBusinessError("X", "wrapped", businessflow.ErrContractNotFound), fiber.StatusNotFound, "CONTRACT_NOT_FOUND"},
		{"invalid state", businessflow.ErrInvalidContractState, fiber.StatusBadRequest, "INVALID_CONTRACT_STATE"},
		{"not ended", businessflow.ErrContractNotEnded, fiber.StatusBadRequest, "CONTRACT_NOT_ENDED"},
		{"unexpected", errors.New("connection reset"), fiber.StatusInternalServerError, "GET_CONTRACT_FAILED"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewContractHandler(&stubContractFlow{err: tc.err}, nil)
			app := newTestApp(testManager)
			app.Get("/contracts/:id", h.GetContract)

			resp, body := doRequest(t, app, http.MethodGet, "/contracts/7", nil)
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.False(t, body.Success)
			assert.Equal(t, tc.code, body.Error.Code)
		})
	}

	t.Run("unexpected error hides internals", func(t *testing.T) {
		h := NewContractHandler(&stubContractFlow{err: errors.New("pq: password authentication failed")}, nil)
		app := newTestApp(testManager)
		app.Get("/contracts/:id", h.GetContract)

		_, body := doRequest(t, app, http.MethodGet, "/contracts/7", nil)
		assert.Equal(t, "Failed to retrieve contract", body.Message)
		assert.Nil(t, body.Error.Details)
	})
}

func TestContractHandler(t *testing.T) {
	t.Run("get parses the id", func(t *testing.T) {
		h := NewContractHandler(&stubContractFlow{}, nil)
		app := newTestApp(testManager)
		app.Get("/contracts/:id", h.GetContract)

		resp, body := doRequest(t, app, http.MethodGet, "/contracts/42", nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var detail dto.ContractDetailResponse
		require.NoError(t, json.Unmarshal(body.Data, &detail))
		assert.Equal(t, uint(42), detail.Contract.ID)
	})

	t.Run("non numeric id is rejected", func(t *testing.T) {
		h := NewContractHandler(&stubContractFlow{}, nil)
		app := newTestApp(testManager)
		app.Get("/contracts/:id", h.GetContract)

		resp, body := doRequest(t, app, http.MethodGet, "/contracts/abc", nil)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
	})

	t.Run("create returns 201", func(t *testing.T) {
		h := NewContractHandler(&stubContractFlow{}, nil)
		app := newTestApp(testManager)
		app.Post("/contracts", h.CreateContract)

		resp, body := doRequest(t, app, http.MethodPost, "/contracts", validContractBody())
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)
		assert.True(t, body.Success)

		var contract dto.ContractDTO
		require.NoError(t, json.Unmarshal(body.Data, &contract))
		assert.Equal(t, "CT20260001", contract.ContractNumber)
	})

	t.Run("create validates the body", func(t *testing.T) {
		h := NewContractHandler(&stubContractFlow{}, nil)
		app := newTestApp(testManager)
		app.Post("/contracts", h.CreateContract)

		payload := validContractBody()
		payload["title"] = "abc"
		payload["start_date"] = "01/01/2026"
		delete(payload, "price_per_spot")

		resp, body := doRequest(t, app, http.MethodPost, "/contracts", payload)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
		assert.Len(t, body.Error.Details, 3)
	})

	t.Run("create with malformed json", func(t *testing.T) {
		h := NewContractHandler(&stubContractFlow{}, nil)
		app := newTestApp(testManager)
		app.Post("/contracts", h.CreateContract)

		req := httptest.NewRequest(http.MethodPost, "/contracts", bytes.NewBufferString("{"))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("invalid reference maps before client not found", func(t *testing.T) {
		err := fmt.Errorf("%w: %w", businessflow.ErrInvalidReference, businessflow.ErrClientNotFound)
		h := NewContractHandler(&stubContractFlow{err: err}, nil)
		app := newTestApp(testManager)
		app.Post("/contracts", h.CreateContract)

		resp, body := doRequest(t, app, http.MethodPost, "/contracts", validContractBody())
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "INVALID_REFERENCE", body.Error.Code)
	})

	t.Run("flow validation errors become 400", func(t *testing.T) {
		h := NewContractHandler(&stubContractFlow{err: businessflow.ErrDiscountOutOfRange}, nil)
		app := newTestApp(testManager)
		app.Post("/contracts", h.CreateContract)

		resp, body := doRequest(t, app, http.MethodPost, "/contracts", validContractBody())
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
		assert.Equal(t, []any{businessflow.ErrDiscountOutOfRange.Error()}, body.Error.Details)
	})

	t.Run("list forwards filters", func(t *testing.T) {
		flow := &stubContractFlow{}
		h := NewContractHandler(flow, nil)
		app := newTestApp(testManager)
		app.Get("/contracts", h.ListContracts)

		resp, _ := doRequest(t, app, http.MethodGet, "/contracts?page=2&limit=5&status=active&payment_status=paid&client_id=3&search=natal", nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		require.NotNil(t, flow.listReq)
		assert.Equal(t, 2, flow.listReq.Page)
		assert.Equal(t, 5, flow.listReq.Limit)
		assert.Equal(t, "active", *flow.listReq.Status)
		assert.Equal(t, "paid", *flow.listReq.PaymentStatus)
		assert.Equal(t, uint(3), *flow.listReq.ClientID)
		assert.Nil(t, flow.listReq.ProgramID)
		assert.Equal(t, "natal", *flow.listReq.Search)
		assert.Equal(t, testManager, flow.actor)
	})

	t.Run("list rejects unknown status", func(t *testing.T) {
		flow := &stubContractFlow{}
		h := NewContractHandler(flow, nil)
		app := newTestApp(testManager)
		app.Get("/contracts", h.ListContracts)

		resp, body := doRequest(t, app, http.MethodGet, "/contracts?status=archived", nil)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
		assert.Nil(t, flow.listReq)
	})

	t.Run("list rejects malformed client id", func(t *testing.T) {
		h := NewContractHandler(&stubContractFlow{}, nil)
		app := newTestApp(testManager)
		app.Get("/contracts", h.ListContracts)

		resp, _ := doRequest(t, app, http.MethodGet, "/contracts?client_id=x", nil)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("complete before end date", func(t *testing.T) {
		h := NewContractHandler(&stubContractFlow{err: businessflow.ErrContractNotEnded}, nil)
		app := newTestApp(testManager)
		app.Put("/contracts/:id/complete", h.CompleteContract)

		resp, body := doRequest(t, app, http.MethodPut, "/contracts/1/complete", nil)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "CONTRACT_NOT_ENDED", body.Error.Code)
	})

	t.Run("cancel without body", func(t *testing.T) {
		flow := &stubContractFlow{}
		h := NewContractHandler(flow, nil)
		app := newTestApp(testManager)
		app.Put("/contracts/:id/cancel", h.CancelContract)

		resp, _ := doRequest(t, app, http.MethodPut, "/contracts/1/cancel", nil)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		require.NotNil(t, flow.cancelReq)
		assert.Nil(t, flow.cancelReq.Reason)
	})

	t.Run("cancel with reason", func(t *testing.T) {
		flow := &stubContractFlow{}
		h := NewContractHandler(flow, nil)
		app := newTestApp(testManager)
		app.Put("/contracts/:id/cancel", h.CancelContract)

		resp, _ := doRequest(t, app, http.MethodPut, "/contracts/1/cancel", map[string]any{"reason": "client request"})
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		require.NotNil(t, flow.cancelReq.Reason)
		assert.Equal(t, "client request", *flow.cancelReq.Reason)
	})

	t.Run("export sends a spreadsheet attachment", func(t *testing.T) {
		h := NewContractHandler(&stubContractFlow{}, nil)
		app := newTestApp(testManager)
		app.Get("/contracts/export", h.ExportContracts)

		req := httptest.NewRequest(http.MethodGet, "/contracts/export?status=active", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), "spreadsheetml")
		assert.Equal(t, `attachment; filename="contracts_20260101_120000.xlsx"`, resp.Header.Get(fiber.HeaderContentDisposition))

		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, []byte("xlsx"), raw)
	})
}

func TestAuthHandlerLogin(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		h := NewAuthHandler(&stubAuthFlow{}, nil)
		app := newTestApp(nil)
		app.Post("/auth/login", h.Login)

		resp, body := doRequest(t, app, http.MethodPost, "/auth/login", map[string]string{"username": "admin", "password": "admin123"})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var login dto.LoginResponse
		require.NoError(t, json.Unmarshal(body.Data, &login))
		assert.Equal(t, "Bearer", login.TokenType)
		assert.Equal(t, "admin", login.User.Username)
	})

	t.Run("invalid credentials", func(t *testing.T) {
		h := NewAuthHandler(&stubAuthFlow{err: businessflow.ErrInvalidCredentials}, nil)
		app := newTestApp(nil)
		app.Post("/auth/login", h.Login)

		resp, body := doRequest(t, app, http.MethodPost, "/auth/login", map[string]string{"username": "admin", "password": "wrong"})
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "INVALID_CREDENTIALS", body.Error.Code)
	})

	t.Run("missing password", func(t *testing.T) {
		h := NewAuthHandler(&stubAuthFlow{}, nil)
		app := newTestApp(nil)
		app.Post("/auth/login", h.Login)

		resp, body := doRequest(t, app, http.MethodPost, "/auth/login", map[string]string{"username": "admin"})
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
	})
}

func TestClientHandlerCreate(t *testing.T) {
	payload := map[string]any{
		"company_name": "Padaria Central",
		"contact_name": "Joao Souza",
		"email":        "contato@padaria.com",
		"cnpj":         "12.345.678/0001-90",
	}

	t.Run("success", func(t *testing.T) {
		h := NewClientHandler(&stubClientFlow{}, nil)
		app := newTestApp(testManager)
		app.Post("/clients", h.CreateClient)

		resp, _ := doRequest(t, app, http.MethodPost, "/clients", payload)
		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	})

	t.Run("malformed cnpj", func(t *testing.T) {
		h := NewClientHandler(&stubClientFlow{}, nil)
		app := newTestApp(testManager)
		app.Post("/clients", h.CreateClient)

		bad := map[string]any{}
		for k, v := range payload {
			bad[k] = v
		}
		bad["cnpj"] = "12345678000190"

		resp, body := doRequest(t, app, http.MethodPost, "/clients", bad)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, []any{"CNPJ must use the format 00.000.000/0000-00"}, body.Error.Details)
	})

	t.Run("duplicate cnpj", func(t *testing.T) {
		h := NewClientHandler(&stubClientFlow{err: businessflow.ErrCNPJAlreadyExists}, nil)
		app := newTestApp(testManager)
		app.Post("/clients", h.CreateClient)

		resp, body := doRequest(t, app, http.MethodPost, "/clients", payload)
		assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
		assert.Equal(t, "CNPJ_EXISTS", body.Error.Code)
	})
}

func TestNewValidatorCustomRules(t *testing.T) {
	var v *validator.Validate
	require.NotPanics(t, func() { v = NewValidator() })

	type sample struct {
		Username string `validate:"username"`
		CNPJ     string `validate:"cnpj"`
		Date     string `validate:"date"`
	}

	assert.NoError(t, v.Struct(sample{Username: "maria_silva", CNPJ: "12.345.678/0001-90", Date: "2026-02-28"}))
	assert.Error(t, v.Struct(sample{Username: "maria silva", CNPJ: "12.345.678/0001-90", Date: "2026-02-28"}))
	assert.Error(t, v.Struct(sample{Username: "maria", CNPJ: "12.345.678/0001-9", Date: "2026-02-28"}))
	assert.Error(t, v.Struct(sample{Username: "maria", CNPJ: "12.345.678/0001-90", Date: "2026-02-30"}))
}

func TestRegisterRulesReportsFailures(t *testing.T) {
	ok := func(validator.FieldLevel) bool { return true }

	err := registerRules(validator.New(), []validationRule{{"username", ok}, {"", ok}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `register ""`)

	err = registerRules(validator.New(), []validationRule{{"cnpj", nil}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `register "cnpj"`)

	assert.NoError(t, registerRules(validator.New(), customRules))
}
