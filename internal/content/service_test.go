package content

import (
	"context"
	"encoding/json"
	"sort"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ridelinehq/ridegear-backend/pkg/db/models"
	pkgerrors "github.com/ridelinehq/ridegear-backend/pkg/errors"
)

type fakeRepo struct {
	blocks   []*models.ContentBlock
	settings map[string]*models.Setting
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{settings: map[string]*models.Setting{}}
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) ListBlocks(_ context.Context, publishedOnly bool) ([]models.ContentBlock, error) {
	var out []models.ContentBlock
	for _, block := range f.blocks {
		if publishedOnly && !block.Published {
			continue
		}
		out = append(out, *block)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (f *fakeRepo) FindBlockByKey(_ context.Context, key string) (*models.ContentBlock, error) {
	for _, block := range f.blocks {
		if block.Key == key {
			return block, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) FindBlockByID(_ context.Context, id uuid.UUID) (*models.ContentBlock, error) {
	for _, block := range f.blocks {
		if block.ID == id {
			return block, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) CreateBlock(_ context.Context, block *models.ContentBlock) error {
	for _, existing := range f.blocks {
		if existing.Key == block.Key {
			return errDuplicate{}
		}
	}
	block.ID = uuid.New()
	f.blocks = append(f.blocks, block)
	return nil
}

func (f *fakeRepo) UpdateBlock(_ context.Context, block *models.ContentBlock) error {
	for i, existing := range f.blocks {
		if existing.ID == block.ID {
			f.blocks[i] = block
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeRepo) DeleteBlock(_ context.Context, id uuid.UUID) error {
	for i, block := range f.blocks {
		if block.ID == id {
			f.blocks = append(f.blocks[:i], f.blocks[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeRepo) ListSettings(_ context.Context) ([]models.Setting, error) {
	var out []models.Setting
	for _, setting := range f.settings {
		out = append(out, *setting)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (f *fakeRepo) FindSetting(_ context.Context, key string) (*models.Setting, error) {
	setting, ok := f.settings[key]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return setting, nil
}

func (f *fakeRepo) UpsertSetting(_ context.Context, setting *models.Setting) error {
	f.settings[setting.Key] = setting
	return nil
}

// errDuplicate mimics a Postgres unique violation.
type errDuplicate struct{}

func (errDuplicate) Error() string    { return "duplicate key value violates unique constraint" }
func (errDuplicate) SQLState() string { return "23505" }

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestPublishedBlocksFiltersAndOrders(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo)

	for _, input := range []BlockInput{
		{Key: "returns-policy", Title: "Returns", Position: 2, Published: true},
		{Key: "hero-banner", Title: "Ride Further", Position: 0, Published: true},
		{Key: "winter-sale", Title: "Winter Sale", Position: 1, Published: false},
	} {
		if _, err := svc.CreateBlock(context.Background(), input); err != nil {
			t.Fatalf("create %s: %v", input.Key, err)
		}
	}

	blocks, err := svc.PublishedBlocks(context.Background())
	if err != nil {
		t.Fatalf("published blocks: %v", err)
	}
	if len(blocks) != 2 {
		t.Fatalf("expected 2 published blocks, got %d", len(blocks))
	}
	if blocks[0].Key != "hero-banner" || blocks[1].Key != "returns-policy" {
		t.Fatalf("unexpected order: %s, %s", blocks[0].Key, blocks[1].Key)
	}
}

func TestCreateBlockDuplicateKeyConflicts(t *testing.T) {
	svc := newTestService(t, newFakeRepo())

	if _, err := svc.CreateBlock(context.Background(), BlockInput{Key: "hero-banner", Title: "One"}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.CreateBlock(context.Background(), BlockInput{Key: "Hero-Banner", Title: "Two"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestUpdateBlockTogglesPublished(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo)

	created, err := svc.CreateBlock(context.Background(), BlockInput{Key: "hero-banner", Title: "Ride Further", Published: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	published := false
	updated, err := svc.UpdateBlock(context.Background(), created.ID, UpdateBlockInput{Published: &published})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Published {
		t.Fatal("expected block to be unpublished")
	}

	blocks, err := svc.PublishedBlocks(context.Background())
	if err != nil {
		t.Fatalf("published blocks: %v", err)
	}
	if len(blocks) != 0 {
		t.Fatalf("expected no published blocks, got %d", len(blocks))
	}
}

func TestUpdateBlockUnknownID(t *testing.T) {
	svc := newTestService(t, newFakeRepo())

	title := "Ghost"
	_, err := svc.UpdateBlock(context.Background(), uuid.New(), UpdateBlockInput{Title: &title})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPutSettingRejectsInvalidJSON(t *testing.T) {
	svc := newTestService(t, newFakeRepo())

	_, err := svc.PutSetting(context.Background(), "store.banner", json.RawMessage(`{"open":`))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPutSettingRoundTrips(t *testing.T) {
	svc := newTestService(t, newFakeRepo())

	if _, err := svc.PutSetting(context.Background(), "Store.Hours", json.RawMessage(`{"open":"09:00","close":"18:00"}`)); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := svc.GetSetting(context.Background(), "store.hours")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	var hours struct {
		Open  string `json:"open"`
		Close string `json:"close"`
	}
	if err := json.Unmarshal(got.Value, &hours); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if hours.Open != "09:00" || hours.Close != "18:00" {
		t.Fatalf("unexpected value: %+v", hours)
	}

	all, err := svc.ListSettings(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if _, ok := all["store.hours"]; !ok {
		t.Fatal("expected store.hours in settings map")
	}
}

func TestGetSettingUnknownKey(t *testing.T) {
	svc := newTestService(t, newFakeRepo())

	_, err := svc.GetSetting(context.Background(), "missing")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
