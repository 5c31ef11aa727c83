package group_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/mfonseca/fluxo/internal/group"
)

func pendingInvite(groupID uuid.UUID, email string) *group.Invite {
	return &group.Invite{
		ID:      uuid.New(),
		GroupID: groupID,
		Email:   email,
		Status:  group.InvitePending,
	}
}

func TestService_Accept(t *testing.T) {
	groupID := uuid.New()
	userID := uuid.New()

	type testCase struct {
		name      string
		email     string
		setupMock func(m *group.MockRepository, inviteID uuid.UUID)
		wantErr   error
	}

	tests := []testCase{
		{
			name:  "Success",
			email: "ana@example.com",
			setupMock: func(m *group.MockRepository, inviteID uuid.UUID) {
				m.EXPECT().
					GetInvite(gomock.Any(), inviteID).
					Return(pendingInvite(groupID, "ana@example.com"), nil)
				m.EXPECT().
					AddMember(gomock.Any(), groupID, userID).
					Return(nil)
				m.EXPECT().
					SetInviteStatus(gomock.Any(), inviteID, group.InviteAccepted).
					Return(nil)
			},
		},
		{
			// An invite id alone must not grant entry: the caller has to
			// be the addressee.
			name:  "WrongAddresseeRejected",
			email: "mallory@example.com",
			setupMock: func(m *group.MockRepository, inviteID uuid.UUID) {
				m.EXPECT().
					GetInvite(gomock.Any(), inviteID).
					Return(pendingInvite(groupID, "ana@example.com"), nil)
			},
			wantErr: group.ErrInviteNotFound,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := group.NewMockRepository(ctrl)
			inviteID := uuid.New()
			tc.setupMock(repo, inviteID)

			svc := group.NewService(repo)

			err := svc.Accept(context.Background(), inviteID, userID, tc.email)

			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestService_Accept_AlreadyHandled(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := group.NewMockRepository(ctrl)

	inv := pendingInvite(uuid.New(), "ana@example.com")
	inv.Status = group.InviteAccepted

	repo.EXPECT().GetInvite(gomock.Any(), inv.ID).Return(inv, nil)

	svc := group.NewService(repo)

	err := svc.Accept(context.Background(), inv.ID, uuid.New(), "ana@example.com")
	assert.ErrorContains(t, err, "already accepted")
}

func TestService_Decline(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := group.NewMockRepository(ctrl)

	inv := pendingInvite(uuid.New(), "ana@example.com")

	repo.EXPECT().GetInvite(gomock.Any(), inv.ID).Return(inv, nil)
	repo.EXPECT().SetInviteStatus(gomock.Any(), inv.ID, group.InviteDeclined).Return(nil)

	svc := group.NewService(repo)

	assert.NoError(t, svc.Decline(context.Background(), inv.ID, "ana@example.com"))
}

func TestService_Decline_WrongAddressee(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := group.NewMockRepository(ctrl)

	inv := pendingInvite(uuid.New(), "ana@example.com")

	repo.EXPECT().GetInvite(gomock.Any(), inv.ID).Return(inv, nil)

	svc := group.NewService(repo)

	err := svc.Decline(context.Background(), inv.ID, "mallory@example.com")
	assert.ErrorIs(t, err, group.ErrInviteNotFound)
}
