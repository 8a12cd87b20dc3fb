package service

import (
	"context"
	"errors"
	"sync"

	"skillmesh/internal/models"
	"skillmesh/internal/repository"
)

// pairLock is a refcounted mutex for one user pair. The count tracks holders
// and waiters so the table entry can be dropped once the last one releases.
type pairLock struct {
	mu   sync.Mutex
	refs int
}

// ConnectionService manages the symmetric connection graph between users.
type ConnectionService struct {
	users repository.UserRepository

	// mu guards pairLocks. Each pair of user IDs gets its own mutex so
	// concurrent connects for the same pair serialize without blocking
	// unrelated pairs.
	mu        sync.Mutex
	pairLocks map[uint64]*pairLock
}

// NewConnectionService returns a new ConnectionService.
func NewConnectionService(users repository.UserRepository) *ConnectionService {
	return &ConnectionService{
		users:     users,
		pairLocks: make(map[uint64]*pairLock),
	}
}

// lockPair acquires the order-normalized lock for a pair and returns the
// unlock function. The table entry lives only while the pair is contended,
// so the map does not grow with every pair ever touched.
func (s *ConnectionService) lockPair(idA, idB uint) func() {
	lo, hi := idA, idB
	if hi < lo {
		lo, hi = hi, lo
	}
	key := uint64(lo)<<32 | uint64(hi)

	s.mu.Lock()
	l, ok := s.pairLocks[key]
	if !ok {
		l = &pairLock{}
		s.pairLocks[key] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.pairLocks, key)
		}
		s.mu.Unlock()
	}
}

// Connect links two users, applies the connection reward to both scores and
// persists both records. The two writes are independent; if the second fails
// after the first landed, the error carries the store code so callers know
// the graph may be asymmetric until reconciled.
func (s *ConnectionService) Connect(ctx context.Context, idA, idB uint) (*models.User, *models.User, error) {
	if idA == idB {
		return nil, nil, models.NewValidationError("cannot connect a user to themselves")
	}

	unlock := s.lockPair(idA, idB)
	defer unlock()

	userA, err := s.users.GetByID(ctx, idA)
	if err != nil {
		return nil, nil, err
	}
	userB, err := s.users.GetByID(ctx, idB)
	if err != nil {
		return nil, nil, err
	}

	// Either side counting the other as connected means the pair is linked,
	// even if an earlier partial write left the edge asymmetric.
	if userA.IsConnectedTo(idB) || userB.IsConnectedTo(idA) {
		return nil, nil, models.NewAlreadyConnectedError(idA, idB)
	}

	userA.AddConnection(idB)
	userB.AddConnection(idA)

	deltaA, deltaB := RewardOnConnect(userA.Score, userB.Score)
	userA.Score += deltaA
	userB.Score += deltaB

	if err := s.users.Update(ctx, userA); err != nil {
		return nil, nil, err
	}
	if err := s.users.Update(ctx, userB); err != nil {
		// The first write already landed.
		return nil, nil, models.NewStoreError("connection partially applied", err)
	}

	return userA, userB, nil
}

// Disconnect removes the link between two users from both sides. Scores are
// untouched and removing an absent link is a no-op, so the operation is
// idempotent. It returns both users' remaining connection sets.
func (s *ConnectionService) Disconnect(ctx context.Context, idA, idB uint) ([]uint, []uint, error) {
	if idA == idB {
		return nil, nil, models.NewValidationError("cannot disconnect a user from themselves")
	}

	unlock := s.lockPair(idA, idB)
	defer unlock()

	userA, err := s.users.GetByID(ctx, idA)
	if err != nil {
		return nil, nil, err
	}
	userB, err := s.users.GetByID(ctx, idB)
	if err != nil {
		return nil, nil, err
	}

	userA.RemoveConnection(idB)
	userB.RemoveConnection(idA)

	if err := s.users.Update(ctx, userA); err != nil {
		return nil, nil, err
	}
	if err := s.users.Update(ctx, userB); err != nil {
		return nil, nil, models.NewStoreError("disconnection partially applied", err)
	}

	return userA.Connections, userB.Connections, nil
}

// ListConnections returns the public summaries of every user connected to id.
// Connection entries whose user no longer resolves are skipped rather than
// failing the whole listing.
func (s *ConnectionService) ListConnections(ctx context.Context, id uint) ([]models.UserSummary, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.UserSummary, 0, len(user.Connections))
	for _, connID := range user.Connections {
		conn, err := s.users.GetByID(ctx, connID)
		if err != nil {
			var appErr *models.AppError
			if errors.As(err, &appErr) && appErr.Code == models.CodeNotFound {
				continue
			}
			return nil, err
		}
		summaries = append(summaries, conn.Summary())
	}
	return summaries, nil
}
