package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/j-planelles/projecte-dam/internal/models"
	"github.com/j-planelles/projecte-dam/internal/repository"
)

var (
	testDBOnce sync.Once
	testDBPool *pgxpool.Pool
	testDBErr  error
)

func TestPairingRequestAcceptFlow(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	service := newIntegrationPairingService(pool)

	userID := createTestIdentity(t, ctx, pool, false)
	trainerID := createTestIdentity(t, ctx, pool, true)
	t.Cleanup(func() { cleanupTestIdentities(t, ctx, pool, userID, trainerID) })

	if err := service.CreateRequest(ctx, userID, trainerID); err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}

	inbox, err := service.ListPendingRequests(ctx, trainerID)
	if err != nil {
		t.Fatalf("ListPendingRequests: %v", err)
	}
	if len(inbox) != 1 || inbox[0].ID != userID {
		t.Fatalf("expected user %s in inbox, got %+v", userID, inbox)
	}

	if err := service.Resolve(ctx, trainerID, userID, true); err != nil {
		t.Fatalf("Resolve accept: %v", err)
	}

	trainer, err := service.PairedTrainer(ctx, userID)
	if err != nil {
		t.Fatalf("PairedTrainer: %v", err)
	}
	if trainer.ID != trainerID {
		t.Fatalf("expected trainer %s, got %s", trainerID, trainer.ID)
	}

	// The request was consumed, resolving again finds nothing.
	if err := service.Resolve(ctx, trainerID, userID, true); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second resolve, got %v", err)
	}

	if err := service.Unpair(ctx, userID, trainerID); err != nil {
		t.Fatalf("Unpair: %v", err)
	}
	if _, err := service.PairedTrainer(ctx, userID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after unpair, got %v", err)
	}
}

func TestPairingSecondPendingRequestConflicts(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	service := newIntegrationPairingService(pool)

	userID := createTestIdentity(t, ctx, pool, false)
	firstTrainer := createTestIdentity(t, ctx, pool, true)
	secondTrainer := createTestIdentity(t, ctx, pool, true)
	t.Cleanup(func() { cleanupTestIdentities(t, ctx, pool, userID, firstTrainer, secondTrainer) })

	if err := service.CreateRequest(ctx, userID, firstTrainer); err != nil {
		t.Fatalf("first CreateRequest: %v", err)
	}
	if err := service.CreateRequest(ctx, userID, secondTrainer); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for second pending request, got %v", err)
	}
}

func TestResolveAcceptConflictsWhenUserAlreadyClaimed(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	service := newIntegrationPairingService(pool)

	userID := createTestIdentity(t, ctx, pool, false)
	requestedTrainer := createTestIdentity(t, ctx, pool, true)
	claimingTrainer := createTestIdentity(t, ctx, pool, true)
	t.Cleanup(func() { cleanupTestIdentities(t, ctx, pool, userID, requestedTrainer, claimingTrainer) })

	if err := service.CreateRequest(ctx, userID, requestedTrainer); err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}

	userRepo := repository.NewUserRepository(pool)
	assigned, err := userRepo.AssignTrainer(ctx, userID, claimingTrainer)
	if err != nil || !assigned {
		t.Fatalf("AssignTrainer: assigned=%v err=%v", assigned, err)
	}

	if err := service.Resolve(ctx, requestedTrainer, userID, true); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestAccountDeleteCascade(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	pairing := newIntegrationPairingService(pool)
	accounts := NewAccountService(pool, repository.NewRoleRepository(pool))

	userID := createTestIdentity(t, ctx, pool, false)
	trainerID := createTestIdentity(t, ctx, pool, true)
	t.Cleanup(func() { cleanupTestIdentities(t, ctx, pool, trainerID) })

	if err := pairing.CreateRequest(ctx, userID, trainerID); err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}
	if err := pairing.Resolve(ctx, trainerID, userID, true); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	messageRepo := repository.NewMessageRepository(pool)
	if err := messageRepo.Create(ctx, &models.Message{
		UserID:    userID,
		TrainerID: trainerID,
		Timestamp: time.Now().UnixMilli(),
		Content:   "hello",
	}); err != nil {
		t.Fatalf("Create message: %v", err)
	}

	if err := accounts.Delete(ctx, userID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	userRepo := repository.NewUserRepository(pool)
	if _, err := userRepo.GetByID(ctx, userID); !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("expected user gone, got %v", err)
	}
	if _, err := userRepo.GetCredentialByID(ctx, userID); !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("expected credential gone, got %v", err)
	}
	messages, err := messageRepo.ListForPair(ctx, userID, trainerID)
	if err != nil {
		t.Fatalf("ListForPair: %v", err)
	}
	if len(messages) != 0 {
		t.Fatalf("expected no messages after delete, got %d", len(messages))
	}
}

func TestAccountDisableDropsRecommendations(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	pairing := newIntegrationPairingService(pool)
	accounts := NewAccountService(pool, repository.NewRoleRepository(pool))

	userID := createTestIdentity(t, ctx, pool, false)
	trainerID := createTestIdentity(t, ctx, pool, true)
	t.Cleanup(func() { cleanupTestIdentities(t, ctx, pool, userID, trainerID) })

	if err := pairing.CreateRequest(ctx, userID, trainerID); err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}
	if err := pairing.Resolve(ctx, trainerID, userID, true); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	workoutID := uuid.New()
	if _, err := pool.Exec(ctx, `
		INSERT INTO workout_content (uuid, name, is_public, creator_uuid)
		VALUES ($1, 'Leg day', FALSE, $2)
	`, workoutID, trainerID); err != nil {
		t.Fatalf("insert workout: %v", err)
	}

	recRepo := repository.NewRecommendationRepository(pool)
	if err := recRepo.Create(ctx, &models.Recommendation{
		UserID:    userID,
		TrainerID: trainerID,
		WorkoutID: workoutID,
	}); err != nil {
		t.Fatalf("Create recommendation: %v", err)
	}

	if err := accounts.Disable(ctx, trainerID); err != nil {
		t.Fatalf("Disable: %v", err)
	}

	workouts, err := recRepo.ListWorkoutsForPair(ctx, userID, trainerID)
	if err != nil {
		t.Fatalf("ListWorkoutsForPair: %v", err)
	}
	if len(workouts) != 0 {
		t.Fatalf("expected recommendations gone after disable, got %d", len(workouts))
	}
}

func TestAccountDisableAnonymizesUsername(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	accounts := NewAccountService(pool, repository.NewRoleRepository(pool))

	userID := createTestIdentity(t, ctx, pool, false)
	t.Cleanup(func() { cleanupTestIdentities(t, ctx, pool, userID) })

	userRepo := repository.NewUserRepository(pool)
	before, err := userRepo.GetByID(ctx, userID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}

	if err := accounts.Disable(ctx, userID); err != nil {
		t.Fatalf("Disable: %v", err)
	}

	after, err := userRepo.GetByID(ctx, userID)
	if err != nil {
		t.Fatalf("GetByID after disable: %v", err)
	}
	if !strings.HasPrefix(after.Username, before.Username+"-deleted-") {
		t.Fatalf("expected anonymized username, got %q", after.Username)
	}
	cred, err := userRepo.GetCredentialByID(ctx, userID)
	if err != nil {
		t.Fatalf("GetCredentialByID: %v", err)
	}
	if !cred.IsDisabled {
		t.Fatal("expected credential to be disabled")
	}
}

func integrationTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	testDBOnce.Do(func() {
		_ = godotenv.Load(".env")
		_ = godotenv.Load(filepath.Join("..", "..", ".env"))

		dbURL := os.Getenv("DB_URL")
		if dbURL == "" {
			testDBErr = fmt.Errorf("DB_URL is not set")
			return
		}

		cfg, err := pgxpool.ParseConfig(dbURL)
		if err != nil {
			testDBErr = err
			return
		}

		testDBPool, testDBErr = pgxpool.NewWithConfig(context.Background(), cfg)
		if testDBErr != nil {
			return
		}
		testDBErr = testDBPool.Ping(context.Background())
	})

	if testDBErr != nil {
		t.Skipf("skipping integration test: %v", testDBErr)
	}
	return testDBPool
}

func newIntegrationPairingService(pool *pgxpool.Pool) *PairingService {
	userRepo := repository.NewUserRepository(pool)
	return NewPairingService(
		pool,
		userRepo,
		userRepo,
		repository.NewRoleRepository(pool),
		repository.NewRequestRepository(pool),
	)
}

func createTestIdentity(t *testing.T, ctx context.Context, pool *pgxpool.Pool, trainer bool) uuid.UUID {
	t.Helper()

	userRepo := repository.NewUserRepository(pool)
	user := &models.User{
		ID:       uuid.New(),
		Username: fmt.Sprintf("pairing-test-%d-%s", time.Now().UnixNano(), uuid.NewString()[:8]),
	}
	if err := userRepo.Create(ctx, user); err != nil {
		t.Fatalf("Create user: %v", err)
	}
	if err := userRepo.CreateCredential(ctx, &models.UserCredential{
		UserID:       user.ID,
		PasswordHash: "test-hash",
	}); err != nil {
		t.Fatalf("CreateCredential: %v", err)
	}
	if trainer {
		if err := repository.NewRoleRepository(pool).GrantTrainerRole(ctx, user.ID); err != nil {
			t.Fatalf("GrantTrainerRole: %v", err)
		}
	}
	return user.ID
}

func cleanupTestIdentities(t *testing.T, ctx context.Context, pool *pgxpool.Pool, ids ...uuid.UUID) {
	t.Helper()

	if len(ids) == 0 {
		return
	}

	statements := []string{
		"DELETE FROM message WHERE user_uuid = ANY($1) OR trainer_uuid = ANY($1)",
		"DELETE FROM recommendation WHERE user_uuid = ANY($1) OR trainer_uuid = ANY($1)",
		"DELETE FROM workout_content WHERE creator_uuid = ANY($1)",
		"DELETE FROM trainer_request WHERE user_uuid = ANY($1) OR trainer_uuid = ANY($1)",
		"DELETE FROM interest_selection WHERE user_uuid = ANY($1)",
		"DELETE FROM trainer_role WHERE user_uuid = ANY($1)",
		"DELETE FROM admin_role WHERE user_uuid = ANY($1)",
		"UPDATE users SET trainer_uuid = NULL WHERE trainer_uuid = ANY($1)",
		"DELETE FROM user_credential WHERE user_uuid = ANY($1)",
		"DELETE FROM users WHERE uuid = ANY($1)",
	}
	for _, statement := range statements {
		if _, err := pool.Exec(ctx, statement, ids); err != nil {
			t.Fatalf("cleanup: %v", err)
		}
	}
}
