package assessment

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/sahanw/arogya-backend/internal/data/repos/testutil"
	types "github.com/sahanw/arogya-backend/internal/domain/assessment"
	"github.com/sahanw/arogya-backend/internal/pkg/dbctx"
)

func TestRecordRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewRecordRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	p := testutil.SeedParticipant(t, dbc.Ctx, tx, "recordrepo@example.com")

	first := &types.Record{
		ParticipantID: p.ID,
		Responses:     datatypes.JSON([]byte(`{"q61": 3}`)),
		Score:         12,
		Stage:         0,
		StageSource:   "local_estimate",
	}
	if err := repo.Create(dbc, first); err != nil {
		t.Fatalf("Create: %v", err)
	}
	second := testutil.SeedAssessment(t, dbc.Ctx, tx, p.ID, 60, 1)

	got, err := repo.GetByID(dbc, first.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got == nil || got.Score != 12 {
		t.Fatalf("GetByID: unexpected result: %+v", got)
	}

	latest, err := repo.GetLatestByParticipant(dbc, p.ID)
	if err != nil {
		t.Fatalf("GetLatestByParticipant: %v", err)
	}
	if latest == nil || latest.ID != second.ID {
		t.Fatalf("GetLatestByParticipant: expected the newer record, got %+v", latest)
	}

	list, err := repo.ListByParticipant(dbc, p.ID, 10)
	if err != nil {
		t.Fatalf("ListByParticipant: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("ListByParticipant: expected 2 records, got %d", len(list))
	}

	capped, err := repo.ListByParticipant(dbc, p.ID, 1)
	if err != nil {
		t.Fatalf("ListByParticipant(limit 1): %v", err)
	}
	if len(capped) != 1 {
		t.Fatalf("ListByParticipant(limit 1): expected 1 record, got %d", len(capped))
	}

	none, err := repo.GetLatestByParticipant(dbc, uuid.New())
	if err != nil {
		t.Fatalf("GetLatestByParticipant(unknown): %v", err)
	}
	if none != nil {
		t.Fatalf("GetLatestByParticipant(unknown): expected nil, got %+v", none)
	}
}
