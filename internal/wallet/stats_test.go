package wallet

import (
	"testing"

	"snapwallet/internal/models"
)

func TestComputeStats_Formula(t *testing.T) {
	tests := []struct {
		name        string
		photos      []models.Photo
		withdrawals float64
		wantBalance float64
		wantLikes   int
	}{
		{"empty account", nil, 0, 0, 0},
		{"one upload no likes", []models.Photo{{IsVisible: true}}, 0, 2, 0},
		{
			"likes across photos",
			[]models.Photo{{Likes: 3, IsVisible: true}, {Likes: 2, IsVisible: true}},
			0, 4 + 10, 5,
		},
		{
			"hidden photos still earn",
			[]models.Photo{{Likes: 3, IsVisible: false}, {Likes: 1, IsVisible: true}},
			0, 4 + 8, 4,
		},
		{
			"withdrawals subtract",
			[]models.Photo{{Likes: 4, IsVisible: true}},
			6, 2 + 8 - 6, 4,
		},
		{
			"balance clamps at zero",
			[]models.Photo{{IsVisible: true}},
			100, 0, 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := ComputeStats(models.Account{
				Photos:           tt.photos,
				WithdrawalsTotal: tt.withdrawals,
				TotalData:        1.5,
			})

			if stats.Balance != tt.wantBalance {
				t.Errorf("balance: got %v want %v", stats.Balance, tt.wantBalance)
			}
			if stats.TotalLikes != tt.wantLikes {
				t.Errorf("likes: got %d want %d", stats.TotalLikes, tt.wantLikes)
			}
			if stats.PhotosUploaded != len(tt.photos) {
				t.Errorf("photos: got %d want %d", stats.PhotosUploaded, len(tt.photos))
			}
			if stats.TotalData != 1.5 {
				t.Errorf("total data passthrough broken: got %v", stats.TotalData)
			}
			if stats.TotalLikeEarnings != float64(tt.wantLikes)*models.RewardPerLike {
				t.Errorf("like earnings: got %v", stats.TotalLikeEarnings)
			}
		})
	}
}
