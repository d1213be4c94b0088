package sandbox

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alp4ka/gcpro"
)

func newSandboxClient(t *testing.T) (*gcpro.Client, sqlmock.Sqlmock) {
	t.Helper()

	s, dbMock := newTestServer(t, WithAccessToken("sandbox_token"))
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	client, err := gcpro.New("sandbox_token", gcpro.WithEndpoint(srv.URL), gcpro.WithMaxRetries(0))
	require.NoError(t, err)

	return client, dbMock
}

func Test_Client_All_FollowsSandboxCursors(t *testing.T) {
	client, dbMock := newSandboxClient(t)

	dbMock.ExpectQuery(`SELECT \* FROM "records" WHERE resource = \$1 ORDER BY seq ASC LIMIT 3`).
		WithArgs("mandates").
		WillReturnRows(recordRows(1, 2, 3))
	dbMock.ExpectQuery(`SELECT \* FROM "records" WHERE resource = \$1 AND seq > \$2 ORDER BY seq ASC LIMIT 3`).
		WithArgs("mandates", float64(2)).
		WillReturnRows(recordRows(3))

	var ids []string
	params := gcpro.MandateListParams{CursorParams: gcpro.CursorParams{Limit: 2}}
	for m, err := range client.Mandates.All(context.Background(), params) {
		require.NoError(t, err)
		ids = append(ids, m.ID)
	}

	assert.Equal(t, []string{"MD001", "MD002", "MD003"}, ids)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func Test_Client_Pages_FollowsSandboxCursors(t *testing.T) {
	client, dbMock := newSandboxClient(t)

	dbMock.ExpectQuery(`SELECT \* FROM "records" WHERE resource = \$1 ORDER BY seq ASC LIMIT 3`).
		WithArgs("mandates").
		WillReturnRows(recordRows(1, 2, 3))
	dbMock.ExpectQuery(`SELECT \* FROM "records" WHERE resource = \$1 AND seq > \$2 ORDER BY seq ASC LIMIT 3`).
		WithArgs("mandates", float64(2)).
		WillReturnRows(recordRows(3))

	ctx := context.Background()
	params := gcpro.MandateListParams{CursorParams: gcpro.CursorParams{Limit: 2}}

	var sizes []int
	for pending := range client.Mandates.Pages(ctx, params) {
		page, err := pending.Await(ctx)
		require.NoError(t, err)
		sizes = append(sizes, len(page.Items))
	}

	assert.Equal(t, []int{2, 1}, sizes)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func Test_Client_Create_ResolvesIdempotencyConflict(t *testing.T) {
	client, dbMock := newSandboxClient(t)

	dbMock.ExpectQuery(`SELECT \* FROM "records" WHERE resource = \$1 AND idempotency_key = \$2`).
		WithArgs("mandates", "retry-key").
		WillReturnRows(recordRows(1))
	dbMock.ExpectQuery(`SELECT \* FROM "records" WHERE resource = \$1 AND id = \$2`).
		WithArgs("mandates", "MD001").
		WillReturnRows(recordRows(1))

	m, err := client.Mandates.Create(context.Background(), gcpro.MandateCreateParams{
		Links: gcpro.MandateLinks{CustomerBankAccount: "BA1"},
	}, gcpro.WithIdempotencyKey("retry-key"))
	require.NoError(t, err)

	assert.Equal(t, "MD001", m.ID)
	assert.Equal(t, gcpro.MandateStatusPendingSubmission, m.Status)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func Test_Client_Action_InvalidState(t *testing.T) {
	client, dbMock := newSandboxClient(t)

	dbMock.ExpectQuery(`SELECT \* FROM "records" WHERE resource = \$1 AND id = \$2`).
		WithArgs("mandates", "MD001").
		WillReturnRows(recordRow(1, "MD001", "cancelled", `{"id":"MD001","status":"cancelled"}`))

	_, err := client.Mandates.Cancel(context.Background(), "MD001", gcpro.MandateCancelParams{})

	var apiErr *gcpro.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 422, apiErr.StatusCode)
	assert.Equal(t, gcpro.ErrorTypeInvalidState, apiErr.Type)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}
