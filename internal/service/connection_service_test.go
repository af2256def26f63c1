package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"carehub/internal/domain"
	"carehub/internal/models"
	"carehub/internal/repository"
	"carehub/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type connFixture struct {
	ctx        context.Context
	db         *gorm.DB
	svc        *ConnectionService
	notifSvc   *NotificationService
	linkRepo   *repository.FamilyLinkRepository
	notifRepo  *repository.NotificationRepository
	resident   *models.Resident
	family     domain.Caller
	staff      domain.Caller
	otherStaff domain.Caller
	now        time.Time
}

func newConnFixture(t *testing.T) *connFixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	log := zap.NewNop()

	home := testutil.Facility(t, db, "Sunrise")
	other := testutil.Facility(t, db, "Lakeside")
	resident := testutil.Resident(t, db, home.ID, "Kim Young-ja")
	family := testutil.Family(t, db, "daughter@example.com")
	staff := testutil.Staff(t, db, home.ID, domain.RoleCaregiver, "nurse@sunrise.example")
	otherStaff := testutil.Staff(t, db, other.ID, domain.RoleAdmin, "admin@lakeside.example")

	linkRepo := repository.NewFamilyLinkRepository(db)
	notifRepo := repository.NewNotificationRepository(db)
	notifSvc := NewNotificationService(notifRepo, repository.NewUserRepository(db), linkRepo, nil, log)
	svc := NewConnectionService(linkRepo, repository.NewResidentRepository(db), notifSvc, log)
	now := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	return &connFixture{
		ctx:        context.Background(),
		db:         db,
		svc:        svc,
		notifSvc:   notifSvc,
		linkRepo:   linkRepo,
		notifRepo:  notifRepo,
		resident:   resident,
		family:     testutil.CallerOf(family),
		staff:      testutil.CallerOf(staff),
		otherStaff: testutil.CallerOf(otherStaff),
		now:        now,
	}
}

func (f *connFixture) notifications(t *testing.T, userID uint) []models.Notification {
	t.Helper()
	list, err := f.notifRepo.ListByUserID(f.ctx, userID, false, 100, 0)
	require.NoError(t, err)
	return list
}

func TestRequestConnection_CreatesPendingLink(t *testing.T) {
	f := newConnFixture(t)

	link, err := f.svc.RequestConnection(f.ctx, f.family, f.resident.ID, "  자녀 ")
	require.NoError(t, err)
	assert.NotZero(t, link.ID)
	assert.Equal(t, f.resident.ID, link.ResidentID)
	assert.Equal(t, f.family.UserID, link.UserID)
	assert.Equal(t, "자녀", link.Relationship)
	assert.False(t, link.IsApproved)
	assert.Nil(t, link.ApprovedByID)
	assert.Nil(t, link.ApprovedAt)
	assert.Nil(t, link.Resident)
	require.NotNil(t, link.ResidentSummary)
	assert.Equal(t, f.resident.Name, link.ResidentSummary.Name)

	stored, err := f.linkRepo.GetByPair(f.ctx, f.resident.ID, f.family.UserID)
	require.NoError(t, err)
	assert.Equal(t, link.ID, stored.ID)
	assert.False(t, stored.IsApproved)

	assert.Empty(t, f.notifications(t, f.staff.UserID), "request creation notifies nobody")
	assert.Empty(t, f.notifications(t, f.family.UserID))
}

func TestRequestConnection_Validation(t *testing.T) {
	f := newConnFixture(t)

	tests := []struct {
		name         string
		relationship string
		want         error
	}{
		{"empty", "", ErrRelationshipRequired},
		{"blank", "   ", ErrRelationshipRequired},
		{"too long", strings.Repeat("가", domain.MaxRelationshipLength+1), ErrRelationshipTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.RequestConnection(f.ctx, f.family, f.resident.ID, tt.relationship)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	_, err := f.svc.RequestConnection(f.ctx, f.family, f.resident.ID, strings.Repeat("가", domain.MaxRelationshipLength))
	assert.NoError(t, err, "a label of exactly the maximum length is accepted")
}

func TestRequestConnection_RequiresFamily(t *testing.T) {
	f := newConnFixture(t)

	_, err := f.svc.RequestConnection(f.ctx, f.staff, f.resident.ID, "son")
	assert.ErrorIs(t, err, ErrNotFamily)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestRequestConnection_UnknownResident(t *testing.T) {
	f := newConnFixture(t)

	_, err := f.svc.RequestConnection(f.ctx, f.family, f.resident.ID+100, "son")
	assert.ErrorIs(t, err, ErrResidentAbsent)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRequestConnection_DuplicateIsConflict(t *testing.T) {
	f := newConnFixture(t)

	link, err := f.svc.RequestConnection(f.ctx, f.family, f.resident.ID, "daughter")
	require.NoError(t, err)

	_, err = f.svc.RequestConnection(f.ctx, f.family, f.resident.ID, "daughter")
	assert.ErrorIs(t, err, ErrRequestPending)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = f.svc.ResolveConnection(f.ctx, f.staff, link.ID, domain.ActionApprove)
	require.NoError(t, err)

	_, err = f.svc.RequestConnection(f.ctx, f.family, f.resident.ID, "daughter")
	assert.ErrorIs(t, err, ErrAlreadyConnected)
	assert.ErrorIs(t, err, ErrConflict)

	var count int64
	require.NoError(t, f.db.Model(&models.ResidentFamilyLink{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRequestConnection_ConcurrentRequestsKeepOneRow(t *testing.T) {
	f := newConnFixture(t)

	const n = 5
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok       int
		conflict int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.RequestConnection(f.ctx, f.family, f.resident.ID, "son")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case assert.ErrorIs(t, err, ErrConflict):
				conflict++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, conflict)
}

// A request that passes the duplicate check but loses the insert to a
// concurrent one for the same pair still reports a pending request.
func TestRequestConnection_LostInsertRaceIsPending(t *testing.T) {
	f := newConnFixture(t)

	raced := false
	require.NoError(t, f.db.Callback().Create().Before("gorm:create").Register("test:concurrent_insert", func(tx *gorm.DB) {
		link, ok := tx.Statement.Dest.(*models.ResidentFamilyLink)
		if !ok || raced {
			return
		}
		raced = true
		now := time.Now()
		err := tx.Session(&gorm.Session{NewDB: true}).Exec(
			"INSERT INTO resident_family_links (resident_id, user_id, relationship, is_approved, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
			link.ResidentID, link.UserID, "son", false, now, now,
		).Error
		if err != nil {
			_ = tx.AddError(err)
		}
	}))

	_, err := f.svc.RequestConnection(f.ctx, f.family, f.resident.ID, "daughter")
	require.True(t, raced)
	assert.ErrorIs(t, err, ErrRequestPending)
	assert.ErrorIs(t, err, ErrConflict)
	assert.NotErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestResolveConnection_ApproveNotifiesRequesterOnce(t *testing.T) {
	f := newConnFixture(t)
	link, err := f.svc.RequestConnection(f.ctx, f.family, f.resident.ID, "daughter")
	require.NoError(t, err)

	approved, err := f.svc.ResolveConnection(f.ctx, f.staff, link.ID, domain.ActionApprove)
	require.NoError(t, err)
	assert.True(t, approved.IsApproved)
	require.NotNil(t, approved.ApprovedByID)
	assert.Equal(t, f.staff.UserID, *approved.ApprovedByID)
	require.NotNil(t, approved.ApprovedAt)
	assert.True(t, f.now.Equal(*approved.ApprovedAt))

	stored, err := f.linkRepo.GetByID(f.ctx, link.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsApproved)
	require.NotNil(t, stored.ApprovedByID)
	assert.Equal(t, f.staff.UserID, *stored.ApprovedByID)

	list := f.notifications(t, f.family.UserID)
	require.Len(t, list, 1)
	n := list[0]
	assert.Equal(t, domain.NotificationFamilyApproved, n.Type)
	assert.Contains(t, n.Title, f.resident.Name)
	assert.False(t, n.IsRead)
	require.NotNil(t, n.RelatedID)
	assert.Equal(t, f.resident.ID, *n.RelatedID)
	require.NotNil(t, n.RelatedType)
	assert.Equal(t, domain.RelatedResident, *n.RelatedType)

	assert.Empty(t, f.notifications(t, f.staff.UserID))
}

func TestResolveConnection_SecondApproveIsNotFound(t *testing.T) {
	f := newConnFixture(t)
	link, err := f.svc.RequestConnection(f.ctx, f.family, f.resident.ID, "son")
	require.NoError(t, err)
	_, err = f.svc.ResolveConnection(f.ctx, f.staff, link.ID, domain.ActionApprove)
	require.NoError(t, err)

	_, err = f.svc.ResolveConnection(f.ctx, f.staff, link.ID, domain.ActionApprove)
	assert.ErrorIs(t, err, ErrNoPendingLink)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Len(t, f.notifications(t, f.family.UserID), 1, "no second approval notification")
}

func TestResolveConnection_CrossFacilityIsForbidden(t *testing.T) {
	f := newConnFixture(t)
	link, err := f.svc.RequestConnection(f.ctx, f.family, f.resident.ID, "son")
	require.NoError(t, err)

	for _, action := range []string{domain.ActionApprove, domain.ActionReject} {
		_, err = f.svc.ResolveConnection(f.ctx, f.otherStaff, link.ID, action)
		assert.ErrorIs(t, err, ErrCrossFacility)
		assert.ErrorIs(t, err, ErrForbidden)
	}

	stored, err := f.linkRepo.GetByID(f.ctx, link.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsApproved)
	assert.Nil(t, stored.ApprovedByID)
	assert.Empty(t, f.notifications(t, f.family.UserID))
}

func TestResolveConnection_CrossFacilityBeatsStateCheck(t *testing.T) {
	f := newConnFixture(t)
	link, err := f.svc.RequestConnection(f.ctx, f.family, f.resident.ID, "son")
	require.NoError(t, err)
	_, err = f.svc.ResolveConnection(f.ctx, f.staff, link.ID, domain.ActionApprove)
	require.NoError(t, err)

	_, err = f.svc.ResolveConnection(f.ctx, f.otherStaff, link.ID, domain.ActionApprove)
	assert.ErrorIs(t, err, ErrCrossFacility)
}

func TestResolveConnection_Rejections(t *testing.T) {
	f := newConnFixture(t)
	link, err := f.svc.RequestConnection(f.ctx, f.family, f.resident.ID, "son")
	require.NoError(t, err)

	_, err = f.svc.ResolveConnection(f.ctx, f.family, link.ID, domain.ActionApprove)
	assert.ErrorIs(t, err, ErrNotStaff)

	_, err = f.svc.ResolveConnection(f.ctx, f.family, link.ID, "maybe")
	assert.ErrorIs(t, err, ErrNotStaff, "role is checked before the action")
	assert.NotErrorIs(t, err, ErrValidation)

	_, err = f.svc.ResolveConnection(f.ctx, f.staff, link.ID, "maybe")
	assert.ErrorIs(t, err, ErrInvalidAction)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.ResolveConnection(f.ctx, f.staff, link.ID+100, domain.ActionApprove)
	assert.ErrorIs(t, err, ErrLinkAbsent)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.ResolveConnection(f.ctx, f.otherStaff, link.ID+100, domain.ActionApprove)
	assert.ErrorIs(t, err, ErrLinkAbsent, "an unknown id has no facility to compare")
}

func TestResolveConnection_RejectDeletesAndAllowsNewRequest(t *testing.T) {
	f := newConnFixture(t)
	link, err := f.svc.RequestConnection(f.ctx, f.family, f.resident.ID, "son")
	require.NoError(t, err)

	out, err := f.svc.ResolveConnection(f.ctx, f.staff, link.ID, domain.ActionReject)
	require.NoError(t, err)
	assert.Nil(t, out)

	_, err = f.linkRepo.GetByID(f.ctx, link.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Empty(t, f.notifications(t, f.family.UserID), "rejection notifies nobody")

	again, err := f.svc.RequestConnection(f.ctx, f.family, f.resident.ID, "son")
	require.NoError(t, err)
	assert.NotEqual(t, link.ID, again.ID)
	assert.False(t, again.IsApproved)
}

func TestResolveConnection_RejectApprovedIsNotFound(t *testing.T) {
	f := newConnFixture(t)
	link, err := f.svc.RequestConnection(f.ctx, f.family, f.resident.ID, "son")
	require.NoError(t, err)
	_, err = f.svc.ResolveConnection(f.ctx, f.staff, link.ID, domain.ActionApprove)
	require.NoError(t, err)

	_, err = f.svc.ResolveConnection(f.ctx, f.staff, link.ID, domain.ActionReject)
	assert.ErrorIs(t, err, ErrNoPendingLink)

	stored, err := f.linkRepo.GetByID(f.ctx, link.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsApproved)
}

func TestResolveConnection_NotificationFailureKeepsApproval(t *testing.T) {
	f := newConnFixture(t)
	link, err := f.svc.RequestConnection(f.ctx, f.family, f.resident.ID, "son")
	require.NoError(t, err)

	require.NoError(t, f.db.Migrator().DropTable(&models.Notification{}))

	approved, err := f.svc.ResolveConnection(f.ctx, f.staff, link.ID, domain.ActionApprove)
	require.NoError(t, err)
	assert.True(t, approved.IsApproved)

	stored, err := f.linkRepo.GetByID(f.ctx, link.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsApproved)
}

func TestUnlink(t *testing.T) {
	f := newConnFixture(t)
	stranger := testutil.CallerOf(testutil.Family(t, f.db, "stranger@example.com"))

	link, err := f.svc.RequestConnection(f.ctx, f.family, f.resident.ID, "son")
	require.NoError(t, err)
	_, err = f.svc.ResolveConnection(f.ctx, f.staff, link.ID, domain.ActionApprove)
	require.NoError(t, err)

	err = f.svc.Unlink(f.ctx, stranger, f.resident.ID, f.family.UserID)
	assert.ErrorIs(t, err, ErrNotLinkOwner)
	err = f.svc.Unlink(f.ctx, f.otherStaff, f.resident.ID, f.family.UserID)
	assert.ErrorIs(t, err, ErrCrossFacility)
	err = f.svc.Unlink(f.ctx, f.family, f.resident.ID+100, f.family.UserID)
	assert.ErrorIs(t, err, ErrResidentAbsent)

	require.NoError(t, f.svc.Unlink(f.ctx, f.family, f.resident.ID, f.family.UserID))
	_, err = f.linkRepo.GetByPair(f.ctx, f.resident.ID, f.family.UserID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	err = f.svc.Unlink(f.ctx, f.family, f.resident.ID, f.family.UserID)
	assert.ErrorIs(t, err, ErrLinkAbsent)

	// Staff may withdraw a pending request on the family's behalf.
	_, err = f.svc.RequestConnection(f.ctx, f.family, f.resident.ID, "son")
	require.NoError(t, err)
	require.NoError(t, f.svc.Unlink(f.ctx, f.staff, f.resident.ID, f.family.UserID))
}

func TestListRequests(t *testing.T) {
	f := newConnFixture(t)
	elsewhere := testutil.Resident(t, f.db, *f.otherStaff.FacilityID, "Park")
	sibling := testutil.CallerOf(testutil.Family(t, f.db, "son@example.com"))

	first, err := f.svc.RequestConnection(f.ctx, f.family, f.resident.ID, "daughter")
	require.NoError(t, err)
	_, err = f.svc.RequestConnection(f.ctx, sibling, f.resident.ID, "son")
	require.NoError(t, err)
	_, err = f.svc.RequestConnection(f.ctx, f.family, elsewhere.ID, "niece")
	require.NoError(t, err)
	_, err = f.svc.ResolveConnection(f.ctx, f.staff, first.ID, domain.ActionApprove)
	require.NoError(t, err)

	pending, err := f.svc.ListRequests(f.ctx, f.staff, 20, 0)
	require.NoError(t, err)
	require.Len(t, pending, 1, "approved links and other facilities are excluded")
	assert.Equal(t, sibling.UserID, pending[0].UserID)
	require.NotNil(t, pending[0].Resident)
	assert.Equal(t, f.resident.Name, pending[0].Resident.Name)

	mine, err := f.svc.ListRequests(f.ctx, f.family, 20, 0)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	for _, l := range mine {
		if l.IsApproved {
			require.NotNil(t, l.Resident)
			assert.Nil(t, l.ResidentSummary)
			continue
		}
		assert.Nil(t, l.Resident, "pending links carry only the public summary")
		require.NotNil(t, l.ResidentSummary)
		assert.Equal(t, elsewhere.ID, l.ResidentSummary.ID)
		assert.Equal(t, "Lakeside", l.ResidentSummary.FacilityName)
	}
}

// The end-to-end walk through one family member's request.
func TestConnectionScenario(t *testing.T) {
	f := newConnFixture(t)

	link, err := f.svc.RequestConnection(f.ctx, f.family, f.resident.ID, "자녀")
	require.NoError(t, err)
	assert.False(t, link.IsApproved)

	_, err = f.svc.ResolveConnection(f.ctx, f.otherStaff, link.ID, domain.ActionApprove)
	assert.ErrorIs(t, err, ErrForbidden)

	approved, err := f.svc.ResolveConnection(f.ctx, f.staff, link.ID, domain.ActionApprove)
	require.NoError(t, err)
	assert.Equal(t, f.staff.UserID, *approved.ApprovedByID)

	list := f.notifications(t, f.family.UserID)
	require.Len(t, list, 1)
	assert.Equal(t, domain.NotificationFamilyApproved, list[0].Type)

	_, err = f.svc.RequestConnection(f.ctx, f.family, f.resident.ID, "자녀")
	assert.ErrorIs(t, err, ErrConflict)
}
