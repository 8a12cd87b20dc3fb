package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillmesh/internal/models"
)

func TestConnectionService_Connect_SelfRejected(t *testing.T) {
	svc := NewConnectionService(&userRepoStub{})

	_, _, err := svc.Connect(context.Background(), 7, 7)
	require.Error(t, err)
	assert.Equal(t, models.CodeValidation, appErrCode(err))
}

func TestConnectionService_Connect_UnknownUser(t *testing.T) {
	store := newMemoryUserStore(models.User{ID: 1, Name: "Alice", Score: 10})
	svc := NewConnectionService(store)

	_, _, err := svc.Connect(context.Background(), 1, 99)
	require.Error(t, err)
	assert.Equal(t, models.CodeNotFound, appErrCode(err))
}

func TestConnectionService_Connect_AppliesRewardsAndEdges(t *testing.T) {
	store := newMemoryUserStore(
		models.User{ID: 1, Name: "Alice", Score: 10},
		models.User{ID: 2, Name: "Dave", Score: 18},
	)
	svc := NewConnectionService(store)

	userA, userB, err := svc.Connect(context.Background(), 1, 2)
	require.NoError(t, err)

	// Gap of 8: the lower side gains 1.6, the higher side the flat 5.
	assert.InDelta(t, 11.6, userA.Score, 1e-9)
	assert.InDelta(t, 23.0, userB.Score, 1e-9)
	assert.Equal(t, []uint{2}, userA.Connections)
	assert.Equal(t, []uint{1}, userB.Connections)

	storedA, err := store.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.InDelta(t, 11.6, storedA.Score, 1e-9)
}

func TestConnectionService_Connect_AlreadyConnected(t *testing.T) {
	store := newMemoryUserStore(
		models.User{ID: 1, Name: "Alice", Score: 10, Connections: []uint{2}},
		models.User{ID: 2, Name: "Bob", Score: 15, Connections: []uint{1}},
	)
	svc := NewConnectionService(store)

	_, _, err := svc.Connect(context.Background(), 1, 2)
	require.Error(t, err)
	assert.Equal(t, models.CodeAlreadyConnected, appErrCode(err))
}

func TestConnectionService_Connect_AsymmetricEdgeStillConnected(t *testing.T) {
	// A partial write left only one direction persisted; a retry must not
	// double-reward.
	store := newMemoryUserStore(
		models.User{ID: 1, Name: "Alice", Score: 10},
		models.User{ID: 2, Name: "Bob", Score: 15, Connections: []uint{1}},
	)
	svc := NewConnectionService(store)

	_, _, err := svc.Connect(context.Background(), 1, 2)
	require.Error(t, err)
	assert.Equal(t, models.CodeAlreadyConnected, appErrCode(err))
}

func TestConnectionService_Connect_SecondSaveFails(t *testing.T) {
	alice := models.User{ID: 1, Name: "Alice", Score: 10}
	bob := models.User{ID: 2, Name: "Bob", Score: 15}

	var updates int
	repo := &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			switch id {
			case 1:
				u := alice
				return &u, nil
			case 2:
				u := bob
				return &u, nil
			}
			return nil, models.NewNotFoundError("User", id)
		},
		updateFn: func(_ context.Context, _ *models.User) error {
			updates++
			if updates == 2 {
				return models.NewStoreError("failed to save user", errors.New("disk full"))
			}
			return nil
		},
	}
	svc := NewConnectionService(repo)

	_, _, err := svc.Connect(context.Background(), 1, 2)
	require.Error(t, err)
	assert.Equal(t, models.CodeStore, appErrCode(err))
	assert.Equal(t, 2, updates)
}

func TestConnectionService_Connect_ConcurrentSamePair(t *testing.T) {
	store := newMemoryUserStore(
		models.User{ID: 1, Name: "Alice", Score: 10},
		models.User{ID: 2, Name: "Bob", Score: 15},
	)
	svc := NewConnectionService(store)

	const attempts = 8
	results := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(flip bool) {
			defer wg.Done()
			idA, idB := uint(1), uint(2)
			if flip {
				idA, idB = idB, idA
			}
			_, _, err := svc.Connect(context.Background(), idA, idB)
			results <- err
		}(i%2 == 0)
	}
	wg.Wait()
	close(results)

	var succeeded, conflicted int
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.Equal(t, models.CodeAlreadyConnected, appErrCode(err))
		conflicted++
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, conflicted)

	// Rewards landed exactly once.
	alice, err := store.GetByID(context.Background(), 1)
	require.NoError(t, err)
	bob, err := store.GetByID(context.Background(), 2)
	require.NoError(t, err)
	assert.InDelta(t, 11.0, alice.Score, 1e-9)
	assert.InDelta(t, 20.0, bob.Score, 1e-9)
	assert.Equal(t, []uint{2}, alice.Connections)
	assert.Equal(t, []uint{1}, bob.Connections)
}

func TestConnectionService_PairLocksReleasedAfterUse(t *testing.T) {
	store := newMemoryUserStore(
		models.User{ID: 1, Name: "Alice", Score: 10},
		models.User{ID: 2, Name: "Bob", Score: 15},
		models.User{ID: 3, Name: "Charlie", Score: 12},
	)
	svc := NewConnectionService(store)

	pairs := [][2]uint{{1, 2}, {2, 3}, {1, 3}}
	for _, p := range pairs {
		_, _, err := svc.Connect(context.Background(), p[0], p[1])
		require.NoError(t, err)
	}
	_, _, err := svc.Disconnect(context.Background(), 1, 2)
	require.NoError(t, err)

	// The lock table only holds entries for in-flight pairs; once every
	// operation returned it must be empty again.
	svc.mu.Lock()
	remaining := len(svc.pairLocks)
	svc.mu.Unlock()
	assert.Zero(t, remaining)
}

func TestConnectionService_Disconnect_RemovesBothSides(t *testing.T) {
	store := newMemoryUserStore(
		models.User{ID: 1, Name: "Alice", Score: 11, Connections: []uint{2, 3}},
		models.User{ID: 2, Name: "Bob", Score: 20, Connections: []uint{1}},
		models.User{ID: 3, Name: "Charlie", Score: 12, Connections: []uint{1}},
	)
	svc := NewConnectionService(store)

	connsA, connsB, err := svc.Disconnect(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint{3}, connsA)
	assert.Empty(t, connsB)

	// Scores never change on disconnect.
	alice, err := store.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.InDelta(t, 11.0, alice.Score, 1e-9)
}

func TestConnectionService_Disconnect_Idempotent(t *testing.T) {
	store := newMemoryUserStore(
		models.User{ID: 1, Name: "Alice", Score: 10},
		models.User{ID: 2, Name: "Bob", Score: 15},
	)
	svc := NewConnectionService(store)

	connsA, connsB, err := svc.Disconnect(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Empty(t, connsA)
	assert.Empty(t, connsB)
}

func TestConnectionService_Disconnect_SelfRejected(t *testing.T) {
	svc := NewConnectionService(&userRepoStub{})

	_, _, err := svc.Disconnect(context.Background(), 4, 4)
	require.Error(t, err)
	assert.Equal(t, models.CodeValidation, appErrCode(err))
}

func TestConnectionService_ListConnections(t *testing.T) {
	store := newMemoryUserStore(
		models.User{ID: 1, Name: "Alice", Score: 10, Connections: []uint{2, 3}},
		models.User{ID: 2, Name: "Bob", Score: 15, Skills: []string{"Express"}, Connections: []uint{1}},
		models.User{ID: 3, Name: "Charlie", Score: 12, Connections: []uint{1}},
	)
	svc := NewConnectionService(store)

	summaries, err := svc.ListConnections(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "Bob", summaries[0].Name)
	assert.Equal(t, []string{"Express"}, summaries[0].Skills)
	assert.Equal(t, "Charlie", summaries[1].Name)
}

func TestConnectionService_ListConnections_SkipsDanglingEntries(t *testing.T) {
	store := newMemoryUserStore(
		models.User{ID: 1, Name: "Alice", Score: 10, Connections: []uint{2, 99}},
		models.User{ID: 2, Name: "Bob", Score: 15, Connections: []uint{1}},
	)
	svc := NewConnectionService(store)

	summaries, err := svc.ListConnections(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "Bob", summaries[0].Name)
}

func TestConnectionService_ListConnections_UnknownUser(t *testing.T) {
	svc := NewConnectionService(newMemoryUserStore())

	_, err := svc.ListConnections(context.Background(), 42)
	require.Error(t, err)
	assert.Equal(t, models.CodeNotFound, appErrCode(err))
}
