package planning

import (
	"sort"
	"strings"
	"time"

	"basegraph.app/cadence/internal/model"
	"basegraph.app/cadence/internal/topics"
)

// Collaborators are the pure functions the engine delegates keyword
// clustering, titles and link selection to. Nil fields use the topics package.
type Collaborators struct {
	ClusterKeywords     func(primary, secondary []string) []model.KeywordCluster
	BuildTitle          func(cluster model.KeywordCluster, primaryKeyword string, channel model.Channel) string
	ChooseInternalLinks func(all []model.LinkSuggestion, cluster model.KeywordCluster) []model.LinkSuggestion
	ChooseExternalLinks func(all []model.LinkSuggestion, cluster model.KeywordCluster) []model.LinkSuggestion
}

// Engine generates publication plans. It holds no mutable state and is safe
// for concurrent use.
type Engine struct {
	collab Collaborators
}

func New(c Collaborators) *Engine {
	if c.ClusterKeywords == nil {
		c.ClusterKeywords = topics.ClusterKeywords
	}
	if c.BuildTitle == nil {
		c.BuildTitle = topics.BuildTopicTitle
	}
	if c.ChooseInternalLinks == nil {
		c.ChooseInternalLinks = topics.ChooseInternalLinks
	}
	if c.ChooseExternalLinks == nil {
		c.ChooseExternalLinks = topics.ChooseExternalLinks
	}
	return &Engine{collab: c}
}

// ProjectContext is the raw project data a bootstrap plan is built from.
type ProjectContext struct {
	Name              string
	PrimaryKeywords   []string
	SecondaryKeywords []string
	InternalLinks     []model.LinkSuggestion
	ExternalLinks     []model.LinkSuggestion
}

type GenerateRequest struct {
	Project      ProjectContext
	StartDate    time.Time
	Cadence      model.Cadence
	Channels     []string
	HorizonWeeks int
}

type RefreshRequest struct {
	SourcePlanID  string
	ProposalName  string
	HorizonWeeks  int
	StartDateISO  string
	Now           time.Time
	Cadence       model.Cadence
	Channels      []string
	Clusters      []model.KeywordCluster
	InternalLinks []model.LinkSuggestion
	ExternalLinks []model.LinkSuggestion
}

const (
	lowPerformanceNote  = "(test)"
	defaultProposalName = "Refreshed plan"
)

// GeneratePublicationPlan builds a fresh plan from raw project keywords. Every
// cluster is weighted equally, and LinkedIn slots repurpose the first blog
// topic of their week.
func (e *Engine) GeneratePublicationPlan(req GenerateRequest) model.PlanGenerationResult {
	start := DayStart(req.StartDate)
	cadence := NormalizeCadence(req.Cadence)
	channels := NormalizeChannels(req.Channels)
	horizon := NormalizeHorizon(req.HorizonWeeks)

	clusters, duplicates := prepareClusters(
		e.collab.ClusterKeywords(req.Project.PrimaryKeywords, req.Project.SecondaryKeywords),
		model.PlanModeBootstrap,
	)
	cal := BuildCalendar(start, horizon, cadence, channels, model.PlanModeBootstrap)
	r := newRun(clusters, nil)
	r.duplicateIDs = duplicates
	links := linkPools{internal: req.Project.InternalLinks, external: req.Project.ExternalLinks}

	items := make([]model.PlanItemDraft, 0, len(cal.Slots))
	blogPicks := make(map[string]int)
	var newsletterWeeks []time.Time

	for _, slot := range cal.Slots {
		switch slot.Channel {
		case model.ChannelNewsletter:
			newsletterWeeks = append(newsletterWeeks, MondayOf(slot.Date))
			continue
		case model.ChannelLinkedIn:
			if idx, ok := blogPicks[slot.WeekKey]; ok {
				r.record(slot.WeekKey, idx)
				items = append(items, e.draft(slot.Date, slot.Channel, r.clusters[idx], bootstrapNote(r.clusters[idx]), links))
				continue
			}
		}

		idx := r.pick(slot.Date)
		if idx < 0 {
			continue
		}
		r.commit(idx, slot)
		if slot.Channel == model.ChannelBlog {
			if _, ok := blogPicks[slot.WeekKey]; !ok {
				blogPicks[slot.WeekKey] = idx
			}
		}
		items = append(items, e.draft(slot.Date, slot.Channel, r.clusters[idx], bootstrapNote(r.clusters[idx]), links))
	}

	items = append(items, e.newsletters(r, newsletterWeeks, links)...)
	sortItems(items)

	return model.PlanGenerationResult{
		Items:       items,
		Diagnostics: r.diagnostics(model.PlanModeBootstrap, start, horizon, "", len(cal.Slots), len(items)),
	}
}

// GenerateRefreshedPlanProposal regenerates a plan from weighted clusters.
// Each cluster receives at most its apportioned quota; slots left once every
// quota is spent are dropped.
func (e *Engine) GenerateRefreshedPlanProposal(req RefreshRequest) model.PlanRefreshResult {
	start := ParseStartDate(req.StartDateISO, req.Now)
	cadence := NormalizeCadence(req.Cadence)
	channels := NormalizeChannels(req.Channels)
	horizon := NormalizeHorizon(req.HorizonWeeks)

	clusters, duplicates := prepareClusters(req.Clusters, model.PlanModeRefresh)
	cal := BuildCalendar(start, horizon, cadence, channels, model.PlanModeRefresh)
	r := newRun(clusters, allocateQuotas(clusters, len(cal.Slots)))
	r.duplicateIDs = duplicates
	links := linkPools{internal: req.InternalLinks, external: req.ExternalLinks}

	items := make([]model.PlanItemDraft, 0, len(cal.Slots)+len(cal.Weeks))
	for _, slot := range cal.Slots {
		idx := r.pick(slot.Date)
		if idx < 0 {
			continue
		}
		r.commit(idx, slot)
		items = append(items, e.draft(slot.Date, slot.Channel, r.clusters[idx], "", links))
	}

	totalSlots := len(cal.Slots)
	if containsChannel(channels, model.ChannelNewsletter) {
		totalSlots += len(cal.Weeks)
		items = append(items, e.newsletters(r, cal.Weeks, links)...)
	}
	sortItems(items)

	name := strings.TrimSpace(req.ProposalName)
	if name == "" {
		name = defaultProposalName
	}

	return model.PlanRefreshResult{
		Proposal: model.PlanProposal{
			Name:      name,
			StartDate: start,
			Cadence:   cadence,
			Channels:  channels,
			Items:     items,
		},
		Diagnostics: r.diagnostics(model.PlanModeRefresh, start, horizon, req.SourcePlanID, totalSlots, len(items)),
	}
}

type linkPools struct {
	internal []model.LinkSuggestion
	external []model.LinkSuggestion
}

func (e *Engine) newsletters(r *run, weeks []time.Time, links linkPools) []model.PlanItemDraft {
	items := make([]model.PlanItemDraft, 0, len(weeks))
	for _, monday := range weeks {
		cluster, note, ok := r.newsletterCluster(monday)
		if !ok {
			continue
		}
		items = append(items, e.draft(monday, model.ChannelNewsletter, cluster, note, links))
	}
	return items
}

func (e *Engine) draft(date time.Time, ch model.Channel, c model.KeywordCluster, note string, links linkPools) model.PlanItemDraft {
	return model.PlanItemDraft{
		PublishDate:       date,
		Channel:           ch,
		Title:             e.collab.BuildTitle(c, c.PrimaryKeyword, ch),
		PrimaryKeyword:    c.PrimaryKeyword,
		SecondaryKeywords: truncateKeywords(c.SecondaryKeywords),
		ClusterID:         c.ID,
		ClusterLabel:      c.Label,
		Note:              note,
		InternalLinks:     nonNilLinks(e.collab.ChooseInternalLinks(links.internal, c)),
		ExternalLinks:     nonNilLinks(e.collab.ChooseExternalLinks(links.external, c)),
	}
}

func bootstrapNote(c model.KeywordCluster) string {
	if c.PerformanceState == model.PerformanceLow {
		return lowPerformanceNote
	}
	return ""
}

// sortItems orders items by publish date, then channel priority.
func sortItems(items []model.PlanItemDraft) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].PublishDate.Equal(items[j].PublishDate) {
			return items[i].PublishDate.Before(items[j].PublishDate)
		}
		return items[i].Channel.Rank() < items[j].Channel.Rank()
	})
}

func containsChannel(channels []model.Channel, ch model.Channel) bool {
	for _, c := range channels {
		if c == ch {
			return true
		}
	}
	return false
}

func nonNilLinks(links []model.LinkSuggestion) []model.LinkSuggestion {
	if links == nil {
		return []model.LinkSuggestion{}
	}
	return links
}
