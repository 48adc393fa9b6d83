package service

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/campuspress/newsroom/internal/cache"
)

// fakeSender records outgoing mail instead of dialing SMTP
type fakeSender struct {
	joinOtps       []string
	leaveOtps      []string
	removalNotices []string
}

func (f *fakeSender) SendJoinOtp(email, name, communityName, otp string) error {
	f.joinOtps = append(f.joinOtps, otp)
	return nil
}

func (f *fakeSender) SendLeaveOtp(email, name, communityName, otp string) error {
	f.leaveOtps = append(f.leaveOtps, otp)
	return nil
}

func (f *fakeSender) SendRemovalNotice(email, name, communityName string) error {
	f.removalNotices = append(f.removalNotices, email)
	return nil
}

func TestRequestJoinRejectsActiveMember(t *testing.T) {
	database, mock := newMockDB(t)
	sender := &fakeSender{}
	svc := NewCommunityService(database, sender, (*cache.Cache)(nil), 10*time.Minute)

	mock.ExpectQuery(`SELECT .+ FROM "communities" WHERE id =`).
		WithArgs("c-1", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug"}).
			AddRow("c-1", "Chess Club", "chess-club"))

	mock.ExpectQuery(`SELECT .+ FROM "community_members" WHERE community_id = .+ AND email =`).
		WithArgs("c-1", "ana@example.edu", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "community_id", "name", "email", "notifications_enabled", "deleted_at", "deleted_by"}).
			AddRow("m-1", "c-1", "Ana", "ana@example.edu", true, nil, nil))

	err := svc.RequestJoin(context.Background(), "c-1", "Ana", "ana@example.edu")
	if KindOf(err) != KindAlreadyMember {
		t.Fatalf("KindOf(err) = %v, want KindAlreadyMember", KindOf(err))
	}
	if len(sender.joinOtps) != 0 {
		t.Error("no OTP mail may be sent to an active member")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRequestJoinValidation(t *testing.T) {
	database, _ := newMockDB(t)
	svc := NewCommunityService(database, &fakeSender{}, (*cache.Cache)(nil), 10*time.Minute)

	tests := []struct {
		name  string
		mName string
		email string
	}{
		{"missing name", "", "ana@example.edu"},
		{"bad email", "Ana", "not-an-email"},
		{"email without domain", "Ana", "ana@"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.RequestJoin(context.Background(), "c-1", tt.mName, tt.email)
			if KindOf(err) != KindValidation {
				t.Errorf("KindOf(err) = %v, want KindValidation", KindOf(err))
			}
		})
	}
}

func TestRequestJoinUnknownCommunity(t *testing.T) {
	database, mock := newMockDB(t)
	svc := NewCommunityService(database, &fakeSender{}, (*cache.Cache)(nil), 10*time.Minute)

	mock.ExpectQuery(`SELECT .+ FROM "communities" WHERE id =`).
		WithArgs("nope", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug"}))

	err := svc.RequestJoin(context.Background(), "nope", "Ana", "ana@example.edu")
	if KindOf(err) != KindNotFound {
		t.Errorf("KindOf(err) = %v, want KindNotFound", KindOf(err))
	}
}

func otpRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "community_id", "email", "name", "otp", "action", "expires_at", "verified",
	})
}

func TestVerifyJoinInvalidCode(t *testing.T) {
	database, mock := newMockDB(t)
	svc := NewCommunityService(database, &fakeSender{}, (*cache.Cache)(nil), 10*time.Minute)

	mock.ExpectQuery(`SELECT .+ FROM "community_otps" WHERE community_id = .+ ORDER BY created_at DESC`).
		WithArgs("c-1", "ana@example.edu", "111111", "join", false, 1).
		WillReturnRows(otpRows())

	_, err := svc.VerifyJoin(context.Background(), "c-1", "ana@example.edu", "111111")
	if KindOf(err) != KindInvalidCode {
		t.Fatalf("KindOf(err) = %v, want KindInvalidCode", KindOf(err))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

// An expired code is rejected before any write: the ledger row stays
// unverified and the roster is untouched.
func TestVerifyJoinExpiredCodeLeavesLedgerUntouched(t *testing.T) {
	database, mock := newMockDB(t)
	svc := NewCommunityService(database, &fakeSender{}, (*cache.Cache)(nil), 10*time.Minute)

	expiredAt := time.Now().UTC().Add(-time.Minute)
	mock.ExpectQuery(`SELECT .+ FROM "community_otps" WHERE community_id = .+ ORDER BY created_at DESC`).
		WithArgs("c-1", "ana@example.edu", "222222", "join", false, 1).
		WillReturnRows(otpRows().
			AddRow("o-1", "c-1", "ana@example.edu", "Ana", "222222", "join", expiredAt, false))

	_, err := svc.VerifyJoin(context.Background(), "c-1", "ana@example.edu", "222222")
	if KindOf(err) != KindExpired {
		t.Fatalf("KindOf(err) = %v, want KindExpired", KindOf(err))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("no statement may follow the expiry check: %v", err)
	}
}

// Rejoining after a leave must restore the soft-deleted row in place:
// same member id, refreshed name, notifications back on.
func TestVerifyJoinRestoresSoftDeletedMember(t *testing.T) {
	database, mock := newMockDB(t)
	svc := NewCommunityService(database, &fakeSender{}, (*cache.Cache)(nil), 10*time.Minute)

	expiresAt := time.Now().UTC().Add(5 * time.Minute)
	leftAt := time.Now().UTC().Add(-24 * time.Hour)

	mock.ExpectQuery(`SELECT .+ FROM "community_otps" WHERE community_id = .+ ORDER BY created_at DESC`).
		WithArgs("c-1", "ana@example.edu", "333333", "join", false, 1).
		WillReturnRows(otpRows().
			AddRow("o-2", "c-1", "ana@example.edu", "Ana Torres", "333333", "join", expiresAt, false))

	mock.ExpectQuery(`SELECT .+ FROM "communities" WHERE id =`).
		WithArgs("c-1", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug"}).
			AddRow("c-1", "Chess Club", "chess-club"))

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "community_otps" SET .*"verified"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT .+ FROM "community_members" WHERE community_id = .+ AND email =`).
		WithArgs("c-1", "ana@example.edu", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "community_id", "name", "email", "notifications_enabled", "deleted_at", "deleted_by"}).
			AddRow("m-9", "c-1", "Ana", "ana@example.edu", false, leftAt, "self"))
	mock.ExpectExec(`UPDATE "community_members" SET .*"deleted_at"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	member, err := svc.VerifyJoin(context.Background(), "c-1", "ana@example.edu", "333333")
	if err != nil {
		t.Fatalf("VerifyJoin: %v", err)
	}
	if member.ID != "m-9" {
		t.Errorf("member id = %q, want the restored row m-9", member.ID)
	}
	if member.Name != "Ana Torres" {
		t.Errorf("name = %q, want the refreshed name", member.Name)
	}
	if !member.NotificationsEnabled {
		t.Error("restore must re-enable notifications")
	}
	if !member.Active() {
		t.Error("restored member must be active")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestVerifyLeaveSoftDeletesMember(t *testing.T) {
	database, mock := newMockDB(t)
	svc := NewCommunityService(database, &fakeSender{}, (*cache.Cache)(nil), 10*time.Minute)

	expiresAt := time.Now().UTC().Add(5 * time.Minute)

	mock.ExpectQuery(`SELECT .+ FROM "community_otps" WHERE community_id = .+ ORDER BY created_at DESC`).
		WithArgs("c-1", "ana@example.edu", "444444", "leave", false, 1).
		WillReturnRows(otpRows().
			AddRow("o-3", "c-1", "ana@example.edu", nil, "444444", "leave", expiresAt, false))

	mock.ExpectQuery(`SELECT .+ FROM "community_members" WHERE community_id = .+ AND email =`).
		WithArgs("c-1", "ana@example.edu", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "community_id", "name", "email", "notifications_enabled", "deleted_at", "deleted_by"}).
			AddRow("m-9", "c-1", "Ana", "ana@example.edu", true, nil, nil))

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "community_otps" SET .*"verified"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "community_members" SET .*"deleted_by"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := svc.VerifyLeave(context.Background(), "c-1", "ana@example.edu", "444444"); err != nil {
		t.Fatalf("VerifyLeave: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestVerifyLeaveRequiresActiveMember(t *testing.T) {
	database, mock := newMockDB(t)
	svc := NewCommunityService(database, &fakeSender{}, (*cache.Cache)(nil), 10*time.Minute)

	expiresAt := time.Now().UTC().Add(5 * time.Minute)

	mock.ExpectQuery(`SELECT .+ FROM "community_otps" WHERE community_id = .+ ORDER BY created_at DESC`).
		WithArgs("c-1", "ana@example.edu", "555555", "leave", false, 1).
		WillReturnRows(otpRows().
			AddRow("o-4", "c-1", "ana@example.edu", nil, "555555", "leave", expiresAt, false))

	mock.ExpectQuery(`SELECT .+ FROM "community_members" WHERE community_id = .+ AND email =`).
		WithArgs("c-1", "ana@example.edu", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "community_id", "name", "email", "notifications_enabled", "deleted_at", "deleted_by"}))

	err := svc.VerifyLeave(context.Background(), "c-1", "ana@example.edu", "555555")
	if KindOf(err) != KindNotMember {
		t.Fatalf("KindOf(err) = %v, want KindNotMember", KindOf(err))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("the ledger row must stay unverified for a non-member: %v", err)
	}
}

// Approval flips the proposal, creates the community under a collision
// free slug and seats the organizer as founding member, all in one
// transaction.
func TestApproveSubmissionCreatesCommunity(t *testing.T) {
	database, mock := newMockDB(t)
	svc := NewCommunityService(database, &fakeSender{}, (*cache.Cache)(nil), 10*time.Minute)

	mock.ExpectQuery(`SELECT .+ FROM "community_submissions" WHERE id =`).
		WithArgs("s-3", 1).
		WillReturnRows(submissionRows().
			AddRow("s-3", "Ana Torres", "ana@example.edu", "Chess Club", "pending"))

	mock.ExpectQuery(`SELECT count\(\*\) FROM "communities" WHERE slug =`).
		WithArgs("chess-club").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "community_submissions" SET .*"status"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "communities"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "community_members"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := svc.ApproveSubmission(context.Background(), "s-3")
	if err != nil {
		t.Fatalf("ApproveSubmission: %v", err)
	}
	if result.Submission.Status != "approved" {
		t.Errorf("submission status = %q, want approved", result.Submission.Status)
	}
	if result.Community.Slug != "chess-club" {
		t.Errorf("slug = %q, want chess-club", result.Community.Slug)
	}
	if result.Member.CommunityID != result.Community.ID {
		t.Error("founding member must belong to the created community")
	}
	if result.Member.Email != "ana@example.edu" || !result.Member.NotificationsEnabled {
		t.Errorf("founding member = %+v", result.Member)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func submissionRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "organizer_name", "organizer_email", "community_name", "status",
	})
}

func TestApproveSubmissionNotFound(t *testing.T) {
	database, mock := newMockDB(t)
	svc := NewCommunityService(database, &fakeSender{}, (*cache.Cache)(nil), 10*time.Minute)

	mock.ExpectQuery(`SELECT .+ FROM "community_submissions" WHERE id =`).
		WithArgs("missing", 1).
		WillReturnRows(submissionRows())

	_, err := svc.ApproveSubmission(context.Background(), "missing")
	if KindOf(err) != KindNotFound {
		t.Errorf("KindOf(err) = %v, want KindNotFound", KindOf(err))
	}
}

func TestApproveSubmissionAlreadyProcessed(t *testing.T) {
	database, mock := newMockDB(t)
	svc := NewCommunityService(database, &fakeSender{}, (*cache.Cache)(nil), 10*time.Minute)

	mock.ExpectQuery(`SELECT .+ FROM "community_submissions" WHERE id =`).
		WithArgs("s-1", 1).
		WillReturnRows(submissionRows().
			AddRow("s-1", "Ana", "ana@example.edu", "Chess Club", "approved"))

	_, err := svc.ApproveSubmission(context.Background(), "s-1")
	if KindOf(err) != KindAlreadyProcessed {
		t.Errorf("KindOf(err) = %v, want KindAlreadyProcessed", KindOf(err))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRejectSubmissionAlreadyProcessed(t *testing.T) {
	database, mock := newMockDB(t)
	svc := NewCommunityService(database, &fakeSender{}, (*cache.Cache)(nil), 10*time.Minute)

	mock.ExpectQuery(`SELECT .+ FROM "community_submissions" WHERE id =`).
		WithArgs("s-2", 1).
		WillReturnRows(submissionRows().
			AddRow("s-2", "Ben", "ben@example.edu", "Debate Society", "rejected"))

	_, err := svc.RejectSubmission(context.Background(), "s-2")
	if KindOf(err) != KindAlreadyProcessed {
		t.Errorf("KindOf(err) = %v, want KindAlreadyProcessed", KindOf(err))
	}
}

func TestCreateSubmissionValidation(t *testing.T) {
	database, _ := newMockDB(t)
	svc := NewCommunityService(database, &fakeSender{}, (*cache.Cache)(nil), 10*time.Minute)

	tests := []struct {
		name           string
		organizerName  string
		organizerEmail string
		communityName  string
	}{
		{"missing organizer", "", "ana@example.edu", "Chess Club"},
		{"missing community name", "Ana", "ana@example.edu", ""},
		{"bad email", "Ana", "ana at example", "Chess Club"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateSubmission(context.Background(), tt.organizerName, tt.organizerEmail, tt.communityName, nil)
			if KindOf(err) != KindValidation {
				t.Errorf("KindOf(err) = %v, want KindValidation", KindOf(err))
			}
		})
	}
}

func TestUpdateCommunityRequiresChanges(t *testing.T) {
	database, _ := newMockDB(t)
	svc := NewCommunityService(database, &fakeSender{}, (*cache.Cache)(nil), 10*time.Minute)

	_, err := svc.Update(context.Background(), "c-1", UpdateCommunityInput{})
	if KindOf(err) != KindValidation {
		t.Errorf("KindOf(err) = %v, want KindValidation", KindOf(err))
	}
}

func TestValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"ana@example.edu", true},
		{"a.b+c@sub.example.org", true},
		{"", false},
		{"ana", false},
		{"ana@", false},
		{"@example.edu", false},
		{"ana@example", false},
		{"ana @example.edu", false},
	}

	for _, tt := range tests {
		if got := validEmail(tt.email); got != tt.want {
			t.Errorf("validEmail(%q) = %v, want %v", tt.email, got, tt.want)
		}
	}
}
