package contract_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/seva-edu/seva-go-api/internal/dto"
	"github.com/seva-edu/seva-go-api/internal/handler"
	"github.com/seva-edu/seva-go-api/internal/models"
)

type stubPolicyService struct {
	policy models.ContentPolicy
}

func (s stubPolicyService) GetPolicy(context.Context) (models.ContentPolicy, error) {
	return s.policy, nil
}

func (s stubPolicyService) UpdatePolicy(context.Context, dto.PolicyUpdateRequest) (dto.PolicyResponse, error) {
	return dto.NewPolicyResponse(s.policy), nil
}

func (s stubPolicyService) ActiveWords(context.Context) ([]string, error) { return nil, nil }

func (s stubPolicyService) BustCache() {}

func (s stubPolicyService) ListWords(context.Context) ([]dto.SensitiveWordResponse, error) {
	return nil, nil
}

func (s stubPolicyService) AddWord(context.Context, dto.SensitiveWordRequest) (dto.SensitiveWordResponse, error) {
	return dto.SensitiveWordResponse{}, nil
}

func (s stubPolicyService) RemoveWord(context.Context, uint) error { return nil }

func (s stubPolicyService) SetWordActive(context.Context, uint, bool) error { return nil }

func compileSchema(t *testing.T, name string) *jsonschema.Schema {
	t.Helper()
	schemaPath, err := filepath.Abs(filepath.Join("..", "contracts", name))
	require.NoError(t, err)
	schema, err := jsonschema.NewCompiler().Compile("file://" + schemaPath)
	require.NoError(t, err)
	return schema
}

func TestContentPolicyContract(t *testing.T) {
	schema := compileSchema(t, "content_policy.schema.json")

	svc := stubPolicyService{policy: models.ContentPolicy{
		ID:               1,
		CommentsEnabled:  true,
		LiveChatEnabled:  false,
		ModerationAction: models.ModerationActionMask,
		UpdatedAt:        time.Now().UTC(),
	}}

	app := fiber.New()
	handler.NewModerationHandler(svc, zerolog.Nop()).Register(app.Group("/api/v1/admin/moderation"))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/admin/moderation/policy", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.NoError(t, schema.Validate(payload))
}
