package category_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/mfonseca/fluxo/internal/category"
	"github.com/mfonseca/fluxo/internal/obligation"
)

func TestCategory_Validate(t *testing.T) {
	type testCase struct {
		name     string
		category category.Category
		wantErr  string
	}

	tests := []testCase{
		{
			name:     "Valid",
			category: category.Category{Name: "Groceries", Color: "#33AA55"},
		},
		{
			name:     "ColorOptional",
			category: category.Category{Name: "Rent"},
		},
		{
			name:     "MissingName",
			category: category.Category{Color: "#33AA55"},
			wantErr:  "name is required",
		},
		{
			name:     "BadColor",
			category: category.Category{Name: "Transport", Color: "green"},
			wantErr:  "invalid color",
		},
		{
			name:     "ShortColor",
			category: category.Category{Name: "Transport", Color: "#FFF"},
			wantErr:  "invalid color",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.category.Validate()
			if tc.wantErr != "" {
				assert.ErrorContains(t, err, tc.wantErr)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestService_Create(t *testing.T) {
	ownerID := uuid.New()
	groupID := uuid.New()

	t.Run("PersonalScope", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := category.NewMockRepository(ctrl)
		svc := category.NewService(repo)

		repo.EXPECT().
			CreateCategory(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, c *category.Category) error {
				assert.Equal(t, ownerID, c.OwnerID)
				assert.Nil(t, c.GroupID)
				return nil
			})

		c, err := svc.Create(context.Background(), category.CreateParams{
			Scope: obligation.Scope{OwnerID: ownerID},
			Name:  "Groceries",
			Color: "#33AA55",
		})
		require.NoError(t, err)
		assert.Equal(t, "Groceries", c.Name)
	})

	t.Run("GroupScope", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := category.NewMockRepository(ctrl)
		svc := category.NewService(repo)

		repo.EXPECT().
			CreateCategory(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, c *category.Category) error {
				require.NotNil(t, c.GroupID)
				assert.Equal(t, groupID, *c.GroupID)
				return nil
			})

		_, err := svc.Create(context.Background(), category.CreateParams{
			Scope: obligation.Scope{OwnerID: ownerID, GroupID: &groupID},
			Name:  "Household",
		})
		require.NoError(t, err)
	})

	t.Run("DuplicateName", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := category.NewMockRepository(ctrl)
		svc := category.NewService(repo)

		repo.EXPECT().
			CreateCategory(gomock.Any(), gomock.Any()).
			Return(category.ErrDuplicate)

		_, err := svc.Create(context.Background(), category.CreateParams{
			Scope: obligation.Scope{OwnerID: ownerID},
			Name:  "Groceries",
		})
		assert.ErrorIs(t, err, category.ErrDuplicate)
	})

	t.Run("InvalidSkipsRepository", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := category.NewMockRepository(ctrl)
		svc := category.NewService(repo)

		_, err := svc.Create(context.Background(), category.CreateParams{
			Scope: obligation.Scope{OwnerID: ownerID},
			Color: "#33AA55",
		})
		assert.ErrorContains(t, err, "name is required")
	})
}

func TestService_Update_Invalid(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := category.NewMockRepository(ctrl)
	svc := category.NewService(repo)

	err := svc.Update(context.Background(), &category.Category{
		ID:      uuid.New(),
		OwnerID: uuid.New(),
		Name:    "Transport",
		Color:   "not-a-color",
	})
	assert.ErrorContains(t, err, "invalid color")
}
