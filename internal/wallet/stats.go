package wallet

import "snapwallet/internal/models"

// ComputeStats derives the displayable wallet snapshot from one account.
// Hidden photos still count: hiding is display-only, earnings already
// attributed are never revoked.
//
// The balance is clamped at zero on purpose. A withdrawal that was valid when
// it happened is not retroactively undone by the formula; the clamp only
// keeps the displayed number sane. Total over any well-formed account.
func ComputeStats(acc models.Account) models.Stats {
	totalLikes := 0
	for _, p := range acc.Photos {
		totalLikes += p.Likes
	}

	uploadEarnings := float64(len(acc.Photos)) * models.RewardPerUpload
	likeEarnings := float64(totalLikes) * models.RewardPerLike

	balance := uploadEarnings + likeEarnings - acc.WithdrawalsTotal
	if balance < 0 {
		balance = 0
	}

	return models.Stats{
		Balance:           balance,
		TotalData:         acc.TotalData,
		PhotosUploaded:    len(acc.Photos),
		TotalLikes:        totalLikes,
		TotalLikeEarnings: likeEarnings,
	}
}
