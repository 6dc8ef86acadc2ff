package identity

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/tabletag-go/internal/dependencies/clock"
	"github.com/mcoot/tabletag-go/internal/dependencies/mocks"
	"github.com/mcoot/tabletag-go/internal/dependencies/random"
	"github.com/mcoot/tabletag-go/internal/model"
	"github.com/mcoot/tabletag-go/internal/shard"
	"github.com/mcoot/tabletag-go/internal/storage/memory"
	"github.com/mcoot/tabletag-go/internal/testutil"
)

const (
	testRootToken = "00000000-0000-0000-0000-000000000000"
	knownToken    = "123e4567-e89b-12d3-a456-426614174000"
	otherToken    = "223e4567-e89b-12d3-a456-426614174000"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	random  *mocks.MockRandom
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	clk := mocks.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	s.storage = memory.New(clk)
	s.random = mocks.NewMockRandom()
	s.service = New(s.storage, shard.New(), s.random, Config{
		RootToken: testRootToken,
	}, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) bytesForID(id string) []byte {
	b := make([]byte, len(id))
	for i := range id {
		b[i] = id[i] - 'A'
	}
	return b
}

func (s *ServiceSuite) TestRegisterIssuesTokenAndID() {
	s.random.QueueBytes(s.bytesForID("QXJZ"))

	reg, err := s.service.RegisterOrFetch(s.ctx, "")
	s.Require().NoError(err)
	s.True(reg.TokenIssued)
	s.True(model.ValidToken(reg.Token))
	s.Equal(model.ClientID("QXJZ"), reg.Session.ID)
	s.Nil(reg.Session.Scope)
}

func (s *ServiceSuite) TestRegisterOrFetchIsIdempotent() {
	s.random.QueueBytes(s.bytesForID("QXJZ"))

	first, err := s.service.RegisterOrFetch(s.ctx, "")
	s.Require().NoError(err)

	second, err := s.service.RegisterOrFetch(s.ctx, first.Token)
	s.Require().NoError(err)
	s.False(second.TokenIssued)
	s.Equal(first.Token, second.Token)
	s.Equal(first.Session.ID, second.Session.ID)
}

func (s *ServiceSuite) TestRegisterKeepsValidUnknownToken() {
	s.random.QueueBytes(s.bytesForID("QXJZ"))

	reg, err := s.service.RegisterOrFetch(s.ctx, knownToken)
	s.Require().NoError(err)
	s.False(reg.TokenIssued)
	s.Equal(knownToken, reg.Token)
}

func (s *ServiceSuite) TestRegisterReplacesMalformedToken() {
	s.random.QueueBytes(s.bytesForID("QXJZ"))

	reg, err := s.service.RegisterOrFetch(s.ctx, "not-a-token")
	s.Require().NoError(err)
	s.True(reg.TokenIssued)
	s.NotEqual("not-a-token", reg.Token)
	s.True(model.ValidToken(reg.Token))
}

func (s *ServiceSuite) TestRegisterRetriesOnIDCollision() {
	s.Require().NoError(s.storage.InsertClient(s.ctx, otherToken, "QXJZ"))

	s.random.QueueBytes(s.bytesForID("QXJZ"), s.bytesForID("QXJZ"), s.bytesForID("MNOP"))

	reg, err := s.service.RegisterOrFetch(s.ctx, knownToken)
	s.Require().NoError(err)
	s.Equal(model.ClientID("MNOP"), reg.Session.ID)
}

func (s *ServiceSuite) TestRegisterExhaustsAllocationBound() {
	// An empty mock queue yields zero bytes, i.e. "AAAA" on every attempt
	s.Require().NoError(s.storage.InsertClient(s.ctx, otherToken, "AAAA"))

	service := New(s.storage, shard.New(), s.random, Config{
		MaxAllocAttempts: 5,
	}, testutil.NopLogger())

	_, err := service.RegisterOrFetch(s.ctx, knownToken)
	s.ErrorIs(err, model.ErrAllocationExhausted)

	// The losing token must not have gained a record
	_, err = s.storage.GetClientByToken(s.ctx, knownToken)
	s.ErrorIs(err, model.ErrClientNotFound)
}

func (s *ServiceSuite) TestResolveSessionMalformedToken() {
	session, err := s.service.ResolveSession(s.ctx, "garbage")
	s.Require().NoError(err)
	s.Nil(session)
}

func (s *ServiceSuite) TestResolveSessionUnknownToken() {
	session, err := s.service.ResolveSession(s.ctx, knownToken)
	s.Require().NoError(err)
	s.Nil(session)
}

func (s *ServiceSuite) TestResolveSessionRootToken() {
	session, err := s.service.ResolveSession(s.ctx, testRootToken)
	s.Require().NoError(err)
	s.Require().NotNil(session)
	s.Equal(model.RootClientID, session.ID)
	s.Require().NotNil(session.Scope)
	s.True(session.Scope.IsAdmin())

	// The root session is synthetic; nothing is persisted for it
	clients, err := s.storage.ListClients(s.ctx)
	s.Require().NoError(err)
	s.Empty(clients)
}

func (s *ServiceSuite) TestResolveSessionRootTokenDisabled() {
	service := New(s.storage, shard.New(), s.random, Config{}, testutil.NopLogger())

	session, err := service.ResolveSession(s.ctx, testRootToken)
	s.Require().NoError(err)
	s.Nil(session)
}

func (s *ServiceSuite) TestResolveSessionStoredClient() {
	s.Require().NoError(s.storage.InsertClient(s.ctx, knownToken, "QXJZ"))
	s.Require().NoError(s.storage.SetClientScope(s.ctx, "QXJZ", model.RoomScope("lounge")))

	session, err := s.service.ResolveSession(s.ctx, knownToken)
	s.Require().NoError(err)
	s.Require().NotNil(session)
	s.Equal(model.ClientID("QXJZ"), session.ID)
	s.Require().NotNil(session.Scope)
	room, ok := session.Scope.Room()
	s.True(ok)
	s.Equal("lounge", room)
}

func (s *ServiceSuite) TestGetClientValidatesID() {
	_, err := s.service.GetClient(s.ctx, "bad!")
	s.ErrorIs(err, model.ErrInvalidClientID)
}

func (s *ServiceSuite) TestSetScopeAndDelete() {
	s.Require().NoError(s.storage.InsertClient(s.ctx, knownToken, "QXJZ"))

	s.Require().NoError(s.service.SetScope(s.ctx, "QXJZ", model.AdminScope()))

	client, err := s.service.GetClient(s.ctx, "QXJZ")
	s.Require().NoError(err)
	s.Require().NotNil(client.Scope)
	s.True(client.Scope.IsAdmin())

	s.Require().NoError(s.service.DeleteClient(s.ctx, "QXJZ"))
	_, err = s.service.GetClient(s.ctx, "QXJZ")
	s.ErrorIs(err, model.ErrClientNotFound)
}

func (s *ServiceSuite) TestSetScopeNotFound() {
	err := s.service.SetScope(s.ctx, "WXYZ", model.AdminScope())
	s.ErrorIs(err, model.ErrClientNotFound)
}

func TestConcurrentRegistrationsGetDistinctIDs(t *testing.T) {
	store := memory.New(clock.New())
	service := New(store, shard.New(), random.New(), Config{}, testutil.NopLogger())
	ctx := context.Background()

	const callers = 32
	ids := make(chan model.ClientID, callers)

	var wg sync.WaitGroup
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reg, err := service.RegisterOrFetch(ctx, "")
			if !assert.NoError(t, err) {
				return
			}
			ids <- reg.Session.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[model.ClientID]struct{}, callers)
	for id := range ids {
		_, dup := seen[id]
		assert.False(t, dup, "id %s allocated twice", id)
		seen[id] = struct{}{}
	}
	require.Len(t, seen, callers)

	clients, err := store.ListClients(ctx)
	require.NoError(t, err)
	assert.Len(t, clients, callers)
}
