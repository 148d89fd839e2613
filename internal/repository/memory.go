package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"groupbid-backend/internal/auctionerrors"
	"groupbid-backend/internal/clock"
	"groupbid-backend/internal/models"

	"github.com/google/uuid"
)

// Memory is a concurrency-safe in-memory store implementing every
// repository interface. It backs tests and small single-node deployments;
// production uses the pgx repositories.
type Memory struct {
	mu    sync.RWMutex
	clock clock.Clock

	users    map[string]models.User
	auctions map[string]models.Auction
	bids     map[string]models.Bid
	groups   map[string]models.FacebookGroup
	sessions map[string]models.LiveFeedSession
	items    map[string]models.LiveFeedItem
	settings map[string]models.UserSettings

	// seq records insertion order so newest-first listings stay stable when
	// timestamps collide (fixed clocks in tests, same-millisecond writes).
	seq     map[string]uint64
	nextSeq uint64
}

// NewMemory creates an empty in-memory store.
func NewMemory(clk clock.Clock) *Memory {
	return &Memory{
		clock:    clk,
		users:    make(map[string]models.User),
		auctions: make(map[string]models.Auction),
		bids:     make(map[string]models.Bid),
		groups:   make(map[string]models.FacebookGroup),
		sessions: make(map[string]models.LiveFeedSession),
		items:    make(map[string]models.LiveFeedItem),
		settings: make(map[string]models.UserSettings),
		seq:      make(map[string]uint64),
	}
}

func (m *Memory) stamp(id string) {
	m.nextSeq++
	m.seq[id] = m.nextSeq
}

// newer reports whether record a was inserted after record b.
func (m *Memory) newer(a, b string) bool {
	return m.seq[a] > m.seq[b]
}

// --- users ---

// CreateUser stores a new user. Username, and facebook id when present, must be
// unique.
func (m *Memory) CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Username == in.Username {
			return nil, fmt.Errorf("username %q: %w", in.Username, auctionerrors.ErrDuplicateKey)
		}
		if in.FacebookID != nil && u.FacebookID != nil && *u.FacebookID == *in.FacebookID {
			return nil, fmt.Errorf("facebook id %q: %w", *in.FacebookID, auctionerrors.ErrDuplicateKey)
		}
	}

	now := m.clock.Now()
	user := models.User{
		ID:         uuid.New().String(),
		Username:   in.Username,
		Name:       in.Name,
		Email:      in.Email,
		Avatar:     in.Avatar,
		FacebookID: in.FacebookID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	m.users[user.ID] = user
	m.stamp(user.ID)
	return &user, nil
}

// GetUser retrieves a user by id.
func (m *Memory) GetUser(ctx context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, auctionerrors.ErrNotFound)
	}
	return &u, nil
}

// GetUserByUsername retrieves a user by username.
func (m *Memory) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Username == username {
			user := u
			return &user, nil
		}
	}
	return nil, fmt.Errorf("username %q: %w", username, auctionerrors.ErrNotFound)
}

// GetUserByFacebookID retrieves a user by linked facebook id.
func (m *Memory) GetUserByFacebookID(ctx context.Context, facebookID string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.FacebookID != nil && *u.FacebookID == facebookID {
			user := u
			return &user, nil
		}
	}
	return nil, fmt.Errorf("facebook id %q: %w", facebookID, auctionerrors.ErrNotFound)
}

// UpdateUser merges the provided fields into the user and re-stamps
// updated_at.
func (m *Memory) UpdateUser(ctx context.Context, id string, upd UserUpdate) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, auctionerrors.ErrNotFound)
	}

	if upd.Name != nil {
		u.Name = upd.Name
	}
	if upd.Email != nil {
		u.Email = upd.Email
	}
	if upd.Avatar != nil {
		u.Avatar = upd.Avatar
	}
	if upd.FacebookID != nil {
		for _, other := range m.users {
			if other.ID != id && other.FacebookID != nil && *other.FacebookID == *upd.FacebookID {
				return nil, fmt.Errorf("facebook id %q: %w", *upd.FacebookID, auctionerrors.ErrDuplicateKey)
			}
		}
		u.FacebookID = upd.FacebookID
	}
	if upd.FacebookAccessToken != nil {
		u.FacebookAccessToken = upd.FacebookAccessToken
	}
	u.UpdatedAt = m.clock.Now()
	m.users[id] = u
	return &u, nil
}

// --- auctions ---

// CreateAuction stores a new auction in draft status with the current bid
// initialized to the starting bid.
func (m *Memory) CreateAuction(ctx context.Context, in CreateAuctionInput) (*models.Auction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	a := models.Auction{
		ID:              uuid.New().String(),
		Title:           in.Title,
		Description:     in.Description,
		FacebookURL:     in.FacebookURL,
		StartingBid:     in.StartingBid,
		CurrentBid:      in.StartingBid,
		MinIncrement:    in.MinIncrement,
		BidCount:        0,
		Status:          models.AuctionDraft,
		StartTime:       in.StartTime,
		EndTime:         in.EndTime,
		UserID:          in.UserID,
		FacebookGroupID: in.FacebookGroupID,
		ImageURLs:       in.ImageURLs,
		IsLiveFeed:      in.IsLiveFeed,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	m.auctions[a.ID] = a
	m.stamp(a.ID)
	return &a, nil
}

// GetAuction retrieves an auction by id.
func (m *Memory) GetAuction(ctx context.Context, id string) (*models.Auction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.auctions[id]
	if !ok {
		return nil, fmt.Errorf("auction %s: %w", id, auctionerrors.ErrNotFound)
	}
	return &a, nil
}

// ListAuctions returns auctions matching the filter, newest first.
func (m *Memory) ListAuctions(ctx context.Context, f AuctionFilter) ([]models.Auction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Auction, 0, len(m.auctions))
	for _, a := range m.auctions {
		if f.UserID != "" && a.UserID != f.UserID {
			continue
		}
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		out = append(out, a)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return m.newer(out[i].ID, out[j].ID)
	})

	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// UpdateAuction merges the provided fields into the auction and re-stamps
// updated_at.
func (m *Memory) UpdateAuction(ctx context.Context, id string, upd AuctionUpdate) (*models.Auction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.auctions[id]
	if !ok {
		return nil, fmt.Errorf("auction %s: %w", id, auctionerrors.ErrNotFound)
	}

	if upd.Title != nil {
		a.Title = *upd.Title
	}
	if upd.Description != nil {
		a.Description = upd.Description
	}
	if upd.FacebookURL != nil {
		a.FacebookURL = upd.FacebookURL
	}
	if upd.FacebookPostID != nil {
		a.FacebookPostID = upd.FacebookPostID
	}
	if upd.CurrentBid != nil {
		a.CurrentBid = *upd.CurrentBid
	}
	if upd.BidCount != nil {
		a.BidCount = *upd.BidCount
	}
	if upd.Status != nil {
		a.Status = *upd.Status
	}
	if upd.ImageURLs != nil {
		a.ImageURLs = *upd.ImageURLs
	}
	a.UpdatedAt = m.clock.Now()
	m.auctions[id] = a
	return &a, nil
}

// DeleteAuction removes an auction. Deleting an absent id is not an error;
// the boolean reports whether a record was removed.
func (m *Memory) DeleteAuction(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.auctions[id]; !ok {
		return false, nil
	}
	delete(m.auctions, id)
	return true, nil
}

// --- bids ---

// CreateBid stores a new bid record.
func (m *Memory) CreateBid(ctx context.Context, in CreateBidInput) (*models.Bid, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b := models.Bid{
		ID:               uuid.New().String(),
		Amount:           in.Amount,
		Bidder:           in.Bidder,
		BidderFacebookID: in.BidderFacebookID,
		AuctionID:        in.AuctionID,
		UserID:           in.UserID,
		IsWinning:        in.IsWinning,
		CreatedAt:        m.clock.Now(),
	}
	m.bids[b.ID] = b
	m.stamp(b.ID)
	return &b, nil
}

// GetBid retrieves a bid by id.
func (m *Memory) GetBid(ctx context.Context, id string) (*models.Bid, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.bids[id]
	if !ok {
		return nil, fmt.Errorf("bid %s: %w", id, auctionerrors.ErrNotFound)
	}
	return &b, nil
}

// ListBidsForAuction returns all bids for an auction, newest first.
func (m *Memory) ListBidsForAuction(ctx context.Context, auctionID string) ([]models.Bid, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.Bid
	for _, b := range m.bids {
		if b.AuctionID == auctionID {
			out = append(out, b)
		}
	}
	m.sortBidsNewestFirst(out)
	return out, nil
}

// ListBidsForUser returns all bids placed by a user, newest first.
func (m *Memory) ListBidsForUser(ctx context.Context, userID string) ([]models.Bid, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.Bid
	for _, b := range m.bids {
		if b.UserID != nil && *b.UserID == userID {
			out = append(out, b)
		}
	}
	m.sortBidsNewestFirst(out)
	return out, nil
}

func (m *Memory) sortBidsNewestFirst(bids []models.Bid) {
	sort.Slice(bids, func(i, j int) bool {
		if !bids[i].CreatedAt.Equal(bids[j].CreatedAt) {
			return bids[i].CreatedAt.After(bids[j].CreatedAt)
		}
		return m.newer(bids[i].ID, bids[j].ID)
	})
}

// SettleBid demotes every prior bid on the auction, stores the new bid as
// the sole winner and advances the auction's settlement fields, all under
// one lock so readers never see a half-settled auction.
func (m *Memory) SettleBid(ctx context.Context, in CreateBidInput) (*models.Bid, *models.Auction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.auctions[in.AuctionID]
	if !ok {
		return nil, nil, fmt.Errorf("auction %s: %w", in.AuctionID, auctionerrors.ErrNotFound)
	}

	for id, b := range m.bids {
		if b.AuctionID == in.AuctionID && b.IsWinning {
			b.IsWinning = false
			m.bids[id] = b
		}
	}

	now := m.clock.Now()
	b := models.Bid{
		ID:               uuid.New().String(),
		Amount:           in.Amount,
		Bidder:           in.Bidder,
		BidderFacebookID: in.BidderFacebookID,
		AuctionID:        in.AuctionID,
		UserID:           in.UserID,
		IsWinning:        true,
		CreatedAt:        now,
	}
	m.bids[b.ID] = b
	m.stamp(b.ID)

	a.CurrentBid = in.Amount
	a.BidCount++
	a.UpdatedAt = now
	m.auctions[a.ID] = a

	return &b, &a, nil
}

// --- facebook groups ---

// CreateGroup registers a new posting target. The external group id must be
// unique.
func (m *Memory) CreateGroup(ctx context.Context, in CreateGroupInput) (*models.FacebookGroup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, g := range m.groups {
		if g.FacebookGroupID == in.FacebookGroupID {
			return nil, fmt.Errorf("facebook group %q: %w", in.FacebookGroupID, auctionerrors.ErrDuplicateKey)
		}
	}

	now := m.clock.Now()
	g := models.FacebookGroup{
		ID:              uuid.New().String(),
		FacebookGroupID: in.FacebookGroupID,
		Name:            in.Name,
		MemberCount:     in.MemberCount,
		UserID:          in.UserID,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	m.groups[g.ID] = g
	m.stamp(g.ID)
	return &g, nil
}

// GetGroup retrieves a facebook group by id.
func (m *Memory) GetGroup(ctx context.Context, id string) (*models.FacebookGroup, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	g, ok := m.groups[id]
	if !ok {
		return nil, fmt.Errorf("group %s: %w", id, auctionerrors.ErrNotFound)
	}
	return &g, nil
}

// ListActiveGroupsForUser returns the user's active groups ordered by name.
func (m *Memory) ListActiveGroupsForUser(ctx context.Context, userID string) ([]models.FacebookGroup, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.FacebookGroup
	for _, g := range m.groups {
		if g.UserID == userID && g.IsActive {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// UpdateGroup merges the provided fields into the group.
func (m *Memory) UpdateGroup(ctx context.Context, id string, upd GroupUpdate) (*models.FacebookGroup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.groups[id]
	if !ok {
		return nil, fmt.Errorf("group %s: %w", id, auctionerrors.ErrNotFound)
	}

	if upd.Name != nil {
		g.Name = *upd.Name
	}
	if upd.MemberCount != nil {
		g.MemberCount = upd.MemberCount
	}
	if upd.IsActive != nil {
		g.IsActive = *upd.IsActive
	}
	g.UpdatedAt = m.clock.Now()
	m.groups[id] = g
	return &g, nil
}

// --- live feed sessions and items ---

// CreateSession stores a new inactive live feed session.
func (m *Memory) CreateSession(ctx context.Context, in CreateSessionInput) (*models.LiveFeedSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	s := models.LiveFeedSession{
		ID:               uuid.New().String(),
		Name:             in.Name,
		UserID:           in.UserID,
		FacebookGroupID:  in.FacebookGroupID,
		IsActive:         false,
		CurrentItemIndex: 0,
		BidIncrement:     in.BidIncrement,
		ItemDuration:     in.ItemDuration,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	m.sessions[s.ID] = s
	m.stamp(s.ID)
	return &s, nil
}

// GetSession retrieves a live feed session by id.
func (m *Memory) GetSession(ctx context.Context, id string) (*models.LiveFeedSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, auctionerrors.ErrNotFound)
	}
	return &s, nil
}

// ListSessionsForUser returns the user's sessions, newest first.
func (m *Memory) ListSessionsForUser(ctx context.Context, userID string) ([]models.LiveFeedSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.LiveFeedSession
	for _, s := range m.sessions {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return m.newer(out[i].ID, out[j].ID)
	})
	return out, nil
}

// UpdateSession merges the provided fields into the session.
func (m *Memory) UpdateSession(ctx context.Context, id string, upd SessionUpdate) (*models.LiveFeedSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, auctionerrors.ErrNotFound)
	}

	if upd.Name != nil {
		s.Name = *upd.Name
	}
	if upd.IsActive != nil {
		s.IsActive = *upd.IsActive
	}
	if upd.CurrentItemIndex != nil {
		s.CurrentItemIndex = *upd.CurrentItemIndex
	}
	if upd.BidIncrement != nil {
		s.BidIncrement = *upd.BidIncrement
	}
	if upd.ItemDuration != nil {
		s.ItemDuration = *upd.ItemDuration
	}
	s.UpdatedAt = m.clock.Now()
	m.sessions[id] = s
	return &s, nil
}

// DeleteSession removes a session, idempotently.
func (m *Memory) DeleteSession(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return false, nil
	}
	delete(m.sessions, id)
	for itemID, it := range m.items {
		if it.SessionID == id {
			delete(m.items, itemID)
		}
	}
	return true, nil
}

// CreateItem stores a new pending live feed item.
func (m *Memory) CreateItem(ctx context.Context, in CreateItemInput) (*models.LiveFeedItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	it := models.LiveFeedItem{
		ID:          uuid.New().String(),
		Name:        in.Name,
		Description: in.Description,
		StartingBid: in.StartingBid,
		SessionID:   in.SessionID,
		OrderIndex:  in.OrderIndex,
		Status:      models.ItemPending,
		ImageURLs:   in.ImageURLs,
		CreatedAt:   m.clock.Now(),
	}
	m.items[it.ID] = it
	m.stamp(it.ID)
	return &it, nil
}

// GetItem retrieves a live feed item by id.
func (m *Memory) GetItem(ctx context.Context, id string) (*models.LiveFeedItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	it, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("item %s: %w", id, auctionerrors.ErrNotFound)
	}
	return &it, nil
}

// ListItemsForSession returns the session's items ordered by order index
// ascending.
func (m *Memory) ListItemsForSession(ctx context.Context, sessionID string) ([]models.LiveFeedItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.LiveFeedItem
	for _, it := range m.items {
		if it.SessionID == sessionID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

// UpdateItem merges the provided fields into the item.
func (m *Memory) UpdateItem(ctx context.Context, id string, upd ItemUpdate) (*models.LiveFeedItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	it, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("item %s: %w", id, auctionerrors.ErrNotFound)
	}

	if upd.Name != nil {
		it.Name = *upd.Name
	}
	if upd.Description != nil {
		it.Description = upd.Description
	}
	if upd.CurrentBid != nil {
		it.CurrentBid = upd.CurrentBid
	}
	if upd.OrderIndex != nil {
		it.OrderIndex = *upd.OrderIndex
	}
	if upd.Status != nil {
		it.Status = *upd.Status
	}
	if upd.ImageURLs != nil {
		it.ImageURLs = *upd.ImageURLs
	}
	m.items[id] = it
	return &it, nil
}

// DeleteItem removes an item, idempotently.
func (m *Memory) DeleteItem(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[id]; !ok {
		return false, nil
	}
	delete(m.items, id)
	return true, nil
}

// --- user settings ---

// CreateSettings stores a settings row. At most one row may exist per user.
func (m *Memory) CreateSettings(ctx context.Context, in CreateSettingsInput) (*models.UserSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.settings {
		if s.UserID == in.UserID {
			return nil, fmt.Errorf("settings for user %s: %w", in.UserID, auctionerrors.ErrDuplicateKey)
		}
	}

	now := m.clock.Now()
	s := models.UserSettings{
		ID:                  uuid.New().String(),
		UserID:              in.UserID,
		OutbidNotifications: in.OutbidNotifications,
		EndingNotifications: in.EndingNotifications,
		NewBidNotifications: in.NewBidNotifications,
		DefaultMinIncrement: in.DefaultMinIncrement,
		DefaultDuration:     in.DefaultDuration,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	m.settings[s.ID] = s
	m.stamp(s.ID)
	return &s, nil
}

// GetSettingsForUser retrieves the settings row for a user.
func (m *Memory) GetSettingsForUser(ctx context.Context, userID string) (*models.UserSettings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, s := range m.settings {
		if s.UserID == userID {
			out := s
			return &out, nil
		}
	}
	return nil, fmt.Errorf("settings for user %s: %w", userID, auctionerrors.ErrNotFound)
}

// UpdateSettingsForUser merges the provided fields into the user's settings
// row.
func (m *Memory) UpdateSettingsForUser(ctx context.Context, userID string, upd SettingsUpdate) (*models.UserSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, s := range m.settings {
		if s.UserID != userID {
			continue
		}
		if upd.OutbidNotifications != nil {
			s.OutbidNotifications = *upd.OutbidNotifications
		}
		if upd.EndingNotifications != nil {
			s.EndingNotifications = *upd.EndingNotifications
		}
		if upd.NewBidNotifications != nil {
			s.NewBidNotifications = *upd.NewBidNotifications
		}
		if upd.DefaultMinIncrement != nil {
			s.DefaultMinIncrement = *upd.DefaultMinIncrement
		}
		if upd.DefaultDuration != nil {
			s.DefaultDuration = *upd.DefaultDuration
		}
		s.UpdatedAt = m.clock.Now()
		m.settings[id] = s
		return &s, nil
	}
	return nil, fmt.Errorf("settings for user %s: %w", userID, auctionerrors.ErrNotFound)
}
