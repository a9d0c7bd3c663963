package services

import (
	"fmt"
	"strings"

	"grantstw/contexts/grant-portfolio/drafting-service/domain/entities"
)

// OrgContext is the slice of the organization record the composer consumes.
type OrgContext struct {
	Name         string
	Region       string
	Mission      string
	FocusTags    []string
	AnnualBudget string
}

// GrantContext is the slice of the grant record the composer consumes.
type GrantContext struct {
	Name      string
	Funder    string
	Tags      []string
	AmountMin string
	AmountMax string
}

// defaultAttachments are the documents every submission package prepares.
var defaultAttachments = []string{
	"Board roster and bios",
	"Audited financials",
	"Letters of support from community partners",
	"Workplan Gantt chart",
}

// ComposeSections produces the seed content for a new draft from the
// organization and grant context. The output is deterministic: identical
// inputs always yield identical sections, so version one of a draft is
// reproducible.
func ComposeSections(org OrgContext, grant GrantContext) entities.DraftSections {
	focus := joinOr(org.FocusTags, "our core programs")
	themes := joinOr(grant.Tags, "the funder's stated priorities")

	coverLetter := fmt.Sprintf(
		"Dear %s Team,\n\n"+
			"On behalf of %s, we are pleased to submit our proposal for the %s. "+
			"Our organization operates in %s and focuses on %s. "+
			"We see strong alignment with your priorities of %s and look forward "+
			"to partnering to scale our impact.",
		fallback(grant.Funder, "Review"), org.Name, grant.Name,
		fallback(org.Region, "our service region"), focus, themes,
	)

	orgSummary := fmt.Sprintf(
		"%s is a member organization with an annual budget of %s. "+
			"Our mission is: %q. We specialize in %s.",
		org.Name, fallback(org.AnnualBudget, "under review"), org.Mission, focus,
	)

	problemStatement := fmt.Sprintf(
		"Communities in %s face persistent challenges related to %s. "+
			"Without investment, these barriers will limit equitable progress.",
		fallback(org.Region, "our service region"), focus,
	)

	activities := fmt.Sprintf(
		"We will deploy a phased plan that builds on our existing programs:\n"+
			"- Launch an inception workshop with local partners to confirm needs.\n"+
			"- Implement core activities around %s tailored to the grant's emphasis on %s.\n"+
			"- Stand up monitoring systems and community feedback loops to adapt in real time.\n"+
			"- Share learnings with peer organizations to multiply impact.",
		focus, themes,
	)

	measurement := "We will track reach, outcome adoption, and sustainability. " +
		"Example KPIs include number of households served, percentage improvement " +
		"against the baseline, and cost per beneficiary. We will generate quarterly " +
		"learning briefs for the funder."

	budget := fmt.Sprintf(
		"Requested support: %s - %s. Funds will prioritize frontline delivery, "+
			"local staffing, community governance, and third-party evaluation.",
		fallback(grant.AmountMin, "TBD"), fallback(grant.AmountMax, "TBD"),
	)

	return entities.DraftSections{
		CoverLetter:      coverLetter,
		OrgSummary:       orgSummary,
		ProblemStatement: problemStatement,
		Activities:       activities,
		Measurement:      measurement,
		Budget:           budget,
		Attachments:      append([]string(nil), defaultAttachments...),
	}
}

func joinOr(values []string, empty string) string {
	if len(values) == 0 {
		return empty
	}
	return strings.Join(values, ", ")
}

func fallback(value string, empty string) string {
	if strings.TrimSpace(value) == "" {
		return empty
	}
	return value
}
