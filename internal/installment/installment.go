// Package installment clusters pre-materialized card-installment rows back
// into the purchases they came from and tracks payment progress.
package installment

import (
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/mfonseca/fluxo/internal/obligation"
)

// Row descriptions carry a " N/M" or " (N/M)" suffix appended at creation
// time; stripping it recovers the shared purchase identity.
var indexSuffix = regexp.MustCompile(`\s\(?\d+/\d+\)?$`)

// NormalizeDescription strips the installment-index suffix from a row
// description.
func NormalizeDescription(description string) string {
	return strings.TrimSpace(indexSuffix.ReplaceAllString(description, ""))
}

// Group is the ephemeral clustering of the rows of one card purchase.
type Group struct {
	Description string
	CardID      *uuid.UUID
	Total       int
	Rows        []*obligation.Obligation

	PaidCount       int
	ProgressPercent float64
	NextUnpaid      *obligation.Obligation
	IsFullyPaid     bool
}

type groupKey struct {
	description string
	cardID      uuid.UUID
	total       int
}

// GroupInstallments clusters rows sharing (normalized description, card,
// installment total). Rows with an installment total of 1 or none at all are
// not part of this view. Input order does not matter; rows inside a group
// come back ordered by installment index.
func GroupInstallments(rows []*obligation.Obligation) []Group {
	grouped := make(map[groupKey][]*obligation.Obligation)

	var order []groupKey

	for _, o := range rows {
		if !o.IsInstallment() {
			continue
		}

		key := groupKey{
			description: NormalizeDescription(o.Description),
			total:       *o.InstallmentTotal,
		}
		if o.CardID != nil {
			key.cardID = *o.CardID
		}

		if _, seen := grouped[key]; !seen {
			order = append(order, key)
		}

		grouped[key] = append(grouped[key], o)
	}

	groups := make([]Group, 0, len(order))

	for _, key := range order {
		members := grouped[key]
		sort.Slice(members, func(i, j int) bool {
			return *members[i].InstallmentIndex < *members[j].InstallmentIndex
		})

		g := Group{
			Description: key.description,
			CardID:      members[0].CardID,
			Total:       key.total,
			Rows:        members,
		}

		for _, o := range members {
			if o.IsPaid {
				g.PaidCount++
			} else if g.NextUnpaid == nil {
				g.NextUnpaid = o
			}
		}

		// The raw ratio is not clamped; a group holding more paid rows than
		// its stated total reads as over 100%.
		g.ProgressPercent = float64(g.PaidCount) / float64(g.Total) * 100
		g.IsFullyPaid = g.PaidCount == g.Total

		groups = append(groups, g)
	}

	return groups
}
