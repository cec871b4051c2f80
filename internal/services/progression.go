package services

import "cashreward/internal/models"

type milestoneUpgrade struct {
	Tier      *models.MilestoneTier
	NewCursor int
}

// evalMilestone checks whether a credit pushed lifetime earnings across the
// next_milestone cursor. When a single credit jumps several rungs only the
// highest crossed tier pays out, and the cursor lands on the rung after it, so
// skipped tiers are spent rather than banked.
func evalMilestone(lifetimeAfter int64, cursor int) milestoneUpgrade {
	if cursor <= 0 || lifetimeAfter < int64(cursor) {
		return milestoneUpgrade{NewCursor: cursor}
	}

	var crossed *models.MilestoneTier
	newCursor := cursor
	for i := range models.MilestoneLadder {
		tier := &models.MilestoneLadder[i]
		if tier.Threshold < int64(cursor) || tier.Threshold > lifetimeAfter {
			continue
		}
		if tier.SpinBonus > 0 || tier.ScratchBonus > 0 {
			crossed = tier
		}
		if i+1 < len(models.MilestoneLadder) {
			newCursor = int(models.MilestoneLadder[i+1].Threshold)
		} else {
			// terminal rung, the ladder is done
			newCursor = 0
		}
	}

	return milestoneUpgrade{Tier: crossed, NewCursor: newCursor}
}
