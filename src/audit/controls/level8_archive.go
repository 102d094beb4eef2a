// backend/src/audit/controls/level8_archive.go
//
// Level 8 - continuity checks against prior archived runs. Every control here
// reports NOT_APPLICABLE when no archive is available.
package controls

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/username/fiscasync/backend/src/audit"
	"github.com/username/fiscasync/backend/src/models"
)

const levelArchive = 8

// sortedArchives returns the archives ordered by period ascending.
func sortedArchives(ctx *audit.Context) []models.ArchiveRecord {
	out := make([]models.ArchiveRecord, len(ctx.Archives))
	copy(out, ctx.Archives)
	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	return out
}

func creditMinusDebit(lines []models.BalanceLine, prefix string) float64 {
	l := byPrefix(lines, prefix)
	return sumCredits(l) - sumDebits(l)
}

// AR-001: the supplied prior balance must match the archived run of the
// preceding period.
func ar001(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "AR-001", "Prior balance matches archive"
	if !ctx.HasArchives() {
		return one(notApplicable(levelArchive, ref, name, "no archive available"))
	}
	if !ctx.HasPrior() {
		return one(notApplicable(levelArchive, ref, name, "prior balance absent"))
	}
	year, err := strconv.Atoi(strings.TrimSpace(ctx.Period))
	if err != nil {
		return one(notApplicable(levelArchive, ref, name, "period is not a year"))
	}
	priorPeriod := strconv.Itoa(year - 1)
	var archive *models.ArchiveRecord
	for i := range ctx.Archives {
		if ctx.Archives[i].Period == priorPeriod {
			archive = &ctx.Archives[i]
			break
		}
	}
	if archive == nil {
		return one(notApplicable(levelArchive, ref, name, fmt.Sprintf("no archive for period %s", priorPeriod)))
	}
	var totalD, totalC float64
	for _, l := range ctx.Prior {
		totalD += l.DebitMovement
		totalC += l.CreditMovement
	}
	ecartD := math.Abs(totalD - archive.Snapshot.TotalDebit)
	ecartC := math.Abs(totalC - archive.Snapshot.TotalCredit)
	if ecartD > 1 || ecartC > 1 {
		r := anomaly(levelArchive, ref, name, models.SeverityBlocking,
			fmt.Sprintf("prior balance differs from the archive: debit gap %s, credit gap %s", amount(ecartD), amount(ecartC)),
			&models.ResultDetails{
				Amounts: map[string]float64{
					"prior_debit": totalD, "archive_debit": archive.Snapshot.TotalDebit,
					"prior_credit": totalC, "archive_credit": archive.Snapshot.TotalCredit,
				},
				Description: "the imported prior balance is not the archived definitive version; either the wrong file was supplied or the data changed after archiving",
			})
		r.Suggestion = "use the prior balance from the official archive; if post-closing corrections happened, re-archive the definitive version"
		r.RegulatoryReference = "Art. 8 Acte Uniforme OHADA - Permanence des methodes et continuite"
		return one(r)
	}
	return one(ok(levelArchive, ref, name, "prior balance matches the archive"))
}

// AR-002: capital stability across the archived periods.
func ar002(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "AR-002", "Capital continuity"
	if !ctx.HasArchives() {
		return one(notApplicable(levelArchive, ref, name, "no archive available"))
	}
	capitalNow := creditMinusDebit(ctx.Current, "101")
	var variations []string
	for _, arch := range sortedArchives(ctx) {
		capArch := creditMinusDebit(arch.Snapshot.Lines, "101")
		if math.Abs(capArch-capitalNow) > 1 {
			variations = append(variations, fmt.Sprintf("%s: %s -> now: %s", arch.Period, amount(capArch), amount(capitalNow)))
		}
	}
	if len(variations) > 0 {
		r := anomaly(levelArchive, ref, name, models.SeverityMinor,
			"capital variation(s) detected against the archives",
			&models.ResultDetails{
				Accounts:    variations,
				Amounts:     map[string]float64{"variations": float64(len(variations)), "capital_current": capitalNow},
				Description: "every change of the share capital must come from a formal general-meeting decision",
			})
		r.Suggestion = "justify each capital variation with the corresponding general-meeting minutes, notarial deeds and legal publications"
		r.RegulatoryReference = "Art. 8 Acte Uniforme OHADA - Permanence des methodes"
		return one(r)
	}
	return one(ok(levelArchive, ref, name, "capital stable across the archived periods"))
}

// AR-003: consecutive losses across the archived periods.
func ar003(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "AR-003", "Result trend"
	if !ctx.HasArchives() {
		return one(notApplicable(levelArchive, ref, name, "no archive available"))
	}
	type periodResult struct {
		period string
		result float64
	}
	var results []periodResult
	for _, arch := range sortedArchives(ctx) {
		results = append(results, periodResult{arch.Period, creditMinusDebit(arch.Snapshot.Lines, "13")})
	}
	period := ctx.Period
	if period == "" {
		period = "current"
	}
	results = append(results, periodResult{period, creditMinusDebit(ctx.Current, "13")})
	if len(results) >= 3 {
		last := results[len(results)-3:]
		allLosses := true
		var total float64
		var detail []string
		for _, r := range last {
			if r.result >= 0 {
				allLosses = false
				break
			}
			total += math.Abs(r.result)
			detail = append(detail, fmt.Sprintf("%s: %s", r.period, amount(r.result)))
		}
		if allLosses {
			r := anomaly(levelArchive, ref, name, models.SeverityInfo,
				fmt.Sprintf("consecutive losses over %d periods", len(last)),
				&models.ResultDetails{
					Accounts:    detail,
					Amounts:     map[string]float64{"loss_periods": float64(len(last)), "cumulated_losses": total},
					Description: "repeated losses signal a structural profitability problem and may challenge the going concern; if equity falls below half of the capital an extraordinary general meeting must decide",
				})
			r.Suggestion = "assess the going-concern situation, consider a recovery plan, and check equity against half of the capital"
			r.RegulatoryReference = "Art. 8 Acte Uniforme OHADA / Art. 664 AUSCGIE"
			return one(r)
		}
	}
	return one(ok(levelArchive, ref, name, fmt.Sprintf("trend analyzed over %d period(s)", len(results))))
}

// AR-004: gaps in the archived period series.
func ar004(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "AR-004", "Series continuity"
	if !ctx.HasArchives() {
		return one(notApplicable(levelArchive, ref, name, "no archive available"))
	}
	archives := sortedArchives(ctx)
	if len(archives) < 2 {
		return one(notApplicable(levelArchive, ref, name, "fewer than 2 archives"))
	}
	var years []int
	for _, a := range archives {
		if y, err := strconv.Atoi(strings.TrimSpace(a.Period)); err == nil {
			years = append(years, y)
		}
	}
	var gaps []string
	for i := 1; i < len(years); i++ {
		if years[i]-years[i-1] > 1 {
			gaps = append(gaps, fmt.Sprintf("gap between %d and %d", years[i-1], years[i]))
		}
	}
	if len(gaps) > 0 {
		r := anomaly(levelArchive, ref, name, models.SeverityMinor,
			"gap(s) in the archived period series",
			&models.ResultDetails{
				Accounts:    gaps,
				Amounts:     map[string]float64{"gaps": float64(len(gaps)), "archived_periods": float64(len(years))},
				Description: "missing periods prevent a full trend analysis and the verification of the retained-earnings chain",
			})
		r.Suggestion = "archive the missing periods; keeping balances over at least 5 periods is recommended"
		r.RegulatoryReference = "Art. 8 Acte Uniforme OHADA - Conservation des documents comptables"
		return one(r)
	}
	return one(ok(levelArchive, ref, name, "continuous period series"))
}

// AR-005: retained-earnings chain across the archives.
func ar005(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "AR-005", "Retained-earnings chain"
	if !ctx.HasArchives() {
		return one(notApplicable(levelArchive, ref, name, "no archive available"))
	}
	archives := sortedArchives(ctx)
	var breaks []string
	for i := 1; i < len(archives); i++ {
		prevResult := creditMinusDebit(archives[i-1].Snapshot.Lines, "13")
		retained := creditMinusDebit(archives[i].Snapshot.Lines, "12")
		if math.Abs(retained-prevResult) > 1 {
			breaks = append(breaks, fmt.Sprintf("%s: retained (%s) != result %s (%s)",
				archives[i].Period, amount(retained), archives[i-1].Period, amount(prevResult)))
		}
	}
	if len(breaks) > 0 {
		r := anomaly(levelArchive, ref, name, models.SeverityMajor,
			fmt.Sprintf("%d retained-earnings inconsistency(ies) across the archives", len(breaks)),
			&models.ResultDetails{
				Accounts:    breaks,
				Amounts:     map[string]float64{"inconsistencies": float64(len(breaks)), "periods_checked": float64(len(archives))},
				Description: "the retained earnings of each period must equal the prior result, possibly reduced by distributions; unexplained gaps challenge the reliability of the accounting chain",
			})
		r.Suggestion = "rebuild the retained-earnings chain; for each gap identify dividends, reserve allocations, or errors"
		r.RegulatoryReference = "Art. 8 Acte Uniforme OHADA - Permanence des methodes"
		return one(r)
	}
	return one(ok(levelArchive, ref, name, "retained-earnings chain coherent"))
}

// AR-006: chart structure stability against the latest archive.
func ar006(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "AR-006", "Stable accounting methods"
	if !ctx.HasArchives() {
		return one(notApplicable(levelArchive, ref, name, "no archive available"))
	}
	archives := sortedArchives(ctx)
	if len(archives) < 2 {
		return one(notApplicable(levelArchive, ref, name, "fewer than 2 archives"))
	}
	prefix2 := func(a string) string {
		a = strings.TrimSpace(a)
		if len(a) > 2 {
			return a[:2]
		}
		return a
	}
	now := make(map[string]bool)
	for _, l := range ctx.Current {
		now[prefix2(l.Account)] = true
	}
	last := archives[len(archives)-1]
	arch := make(map[string]bool)
	for _, l := range last.Snapshot.Lines {
		arch[prefix2(l.Account)] = true
	}
	var added, removed []string
	for p := range now {
		if !arch[p] {
			added = append(added, "+"+p)
		}
	}
	for p := range arch {
		if !now[p] {
			removed = append(removed, "-"+p)
		}
	}
	if len(added) > 5 || len(removed) > 5 {
		r := anomaly(levelArchive, ref, name, models.SeverityInfo,
			fmt.Sprintf("structure changes against the latest archive: +%d prefixes, -%d prefixes", len(added), len(removed)),
			&models.ResultDetails{
				Accounts:    append(added, removed...),
				Amounts:     map[string]float64{"added_prefixes": float64(len(added)), "removed_prefixes": float64(len(removed))},
				Description: "the consistency-of-methods principle requires keeping the same chart nomenclature between periods, barring a justified regulatory change",
			})
		r.Suggestion = "document the nomenclature changes in the annex and ensure the statements stay comparable between periods"
		r.RegulatoryReference = "Art. 8 Acte Uniforme OHADA - Permanence des methodes"
		return one(r)
	}
	return one(ok(levelArchive, ref, name, "accounting methods stable"))
}

// AR-007: difference between the current retained earnings and the latest
// archived result signals a retrospective adjustment or a distribution.
func ar007(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "AR-007", "Retrospective adjustments"
	if !ctx.HasArchives() {
		return one(notApplicable(levelArchive, ref, name, "no archive available"))
	}
	archives := sortedArchives(ctx)
	last := archives[len(archives)-1]
	retained := creditMinusDebit(ctx.Current, "12")
	archivedResult := creditMinusDebit(last.Snapshot.Lines, "13")
	ecart := retained - archivedResult
	if math.Abs(ecart) > 1 {
		r := anomaly(levelArchive, ref, name, models.SeverityMajor,
			fmt.Sprintf("retrospective adjustment detected: %s (retained minus archived result)", amount(ecart)),
			&models.ResultDetails{
				Amounts: map[string]float64{
					"retained_earnings": retained, "archived_result": archivedResult, "adjustment": ecart,
				},
				Description: "the gap may come from a retrospective adjustment (prior-period error correction, method change) or from dividend distribution and reserve allocation",
			})
		r.Suggestion = "document the adjustment in the annex to the statements: nature, reason and impact on the prior periods"
		r.RegulatoryReference = "Art. 8 Acte Uniforme OHADA - Changements de methodes / IAS 8"
		return one(r)
	}
	return one(ok(levelArchive, ref, name, "no retrospective adjustment"))
}

func registerLevel8(reg *audit.Registry) {
	register(reg, levelArchive, models.PhaseIntake, []controlDef{
		{"AR-001", "Prior balance matches archive", "Checks the prior balance against the archived run", models.SeverityBlocking, ar001},
		{"AR-002", "Capital continuity", "Checks capital stability across the archives", models.SeverityMinor, ar002},
		{"AR-003", "Result trend", "Analyzes the multi-period result trend", models.SeverityInfo, ar003},
		{"AR-004", "Series continuity", "Detects missing archived periods", models.SeverityMinor, ar004},
		{"AR-005", "Retained-earnings chain", "Checks the successive retained earnings", models.SeverityMajor, ar005},
		{"AR-006", "Stable accounting methods", "Checks the chart structure against the archives", models.SeverityInfo, ar006},
		{"AR-007", "Retrospective adjustments", "Detects retrospective adjustments", models.SeverityMajor, ar007},
	})
}
