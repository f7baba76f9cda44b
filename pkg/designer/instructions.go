package designer

import (
	"sort"

	"github.com/shipaleks/eidetic/pkg/models"
)

// scoredProposition pairs a proposition with its assigned instruction so
// selectPropositions can sort and cap without recomputing the instruction.
type scoredProposition struct {
	prop  models.Proposition
	instr models.SectionInstruction
}

// assignInstruction implements spec.md §4.3's instruction assignment rule.
// The Designer follows this deterministically; the Reconciler never
// enforces it.
func assignInstruction(p models.Proposition) models.SectionInstruction {
	switch {
	case p.Status == models.StatusSaturated:
		return models.InstructionSaturated
	case (p.Status == models.StatusUntested || p.Status == models.StatusExploring) && len(p.SupportingEvidence) < 2:
		return models.InstructionExplore
	case p.Confidence > 0.7 && (len(p.ContradictingEvidence) > 0 || p.InterviewsWithoutNewEvidence == 0):
		return models.InstructionChallenge
	case p.Confidence >= 0.4 && p.Confidence <= 0.7:
		return models.InstructionVerify
	default:
		return models.InstructionExplore
	}
}

// instructionDropPriority ranks instructions from first-dropped to
// last-dropped when the section cap is exceeded (spec.md §8 boundary
// behavior: "drop lowest-priority first, never CHALLENGE or EXPLORE before
// VERIFY/SATURATED"). Lower number drops first.
func instructionDropPriority(instr models.SectionInstruction) int {
	switch instr {
	case models.InstructionSaturated:
		return 0
	case models.InstructionVerify:
		return 1
	case models.InstructionExplore:
		return 2
	case models.InstructionChallenge:
		return 3
	default:
		return 1
	}
}

// sectionPriority maps a proposition's confidence/status into the
// high/medium/low display priority used to order and, ultimately, label
// sections.
func sectionPriority(p models.Proposition, instr models.SectionInstruction) models.SectionPriority {
	switch instr {
	case models.InstructionChallenge:
		return models.PriorityHigh
	case models.InstructionVerify:
		return models.PriorityMedium
	case models.InstructionExplore:
		if p.Status == models.StatusUntested {
			return models.PriorityHigh
		}
		return models.PriorityMedium
	case models.InstructionSaturated:
		return models.PriorityLow
	default:
		return models.PriorityMedium
	}
}

// selectPropositions sorts live propositions by instruction/confidence/
// last-touched and applies the section cap, dropping lowest-drop-priority
// sections first until the cap is met. Open Question (a) in spec.md §9 —
// which proposition to drop when multiple tie on priority — is resolved
// here as: ties broken by oldest last_updated_interview first (the
// longest-idle proposition is the least actionable one to keep probing).
func selectPropositions(live []models.Proposition, cap int) []models.Proposition {
	scoredList := make([]scoredProposition, 0, len(live))
	for _, p := range live {
		scoredList = append(scoredList, scoredProposition{prop: p, instr: assignInstruction(p)})
	}

	// Keep the highest-value sections: rank by drop priority descending,
	// tie-broken by confidence descending, then by last_updated_interview
	// descending (the longest-idle proposition is first in line to drop).
	sort.Slice(scoredList, func(i, j int) bool {
		a, b := scoredList[i], scoredList[j]
		pa, pb := instructionDropPriority(a.instr), instructionDropPriority(b.instr)
		if pa != pb {
			return pa > pb
		}
		if a.prop.Confidence != b.prop.Confidence {
			return a.prop.Confidence > b.prop.Confidence
		}
		return a.prop.LastUpdatedInterview > b.prop.LastUpdatedInterview
	})

	if len(scoredList) > cap {
		scoredList = scoredList[:cap]
	}

	out := make([]models.Proposition, len(scoredList))
	for i, s := range scoredList {
		out[i] = s.prop
	}
	return out
}
