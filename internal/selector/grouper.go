package selector

import (
	"regexp"
	"sort"
	"strings"

	"evalgrid/internal/model"
)

// Grouper collapses physical (vendor-specific) model records sharing one
// logical name into addressable groups with a deterministic primary.
type Grouper struct {
	providerRank map[string]int
}

// NewGrouper creates a grouper. providerPriority is the explicit provider
// ordering; providers not listed rank after all listed ones.
func NewGrouper(providerPriority []string) *Grouper {
	rank := make(map[string]int, len(providerPriority))
	for i, p := range providerPriority {
		rank[strings.ToLower(p)] = i
	}
	return &Grouper{providerRank: rank}
}

// dateSuffix matches trailing release tags like "-20240229" that vendors
// append to otherwise identical model names.
var dateSuffix = regexp.MustCompile(`-20\d{6}$`)

// ExtractLogicalName derives a stable logical name from a raw model name
// when the catalog carries no explicit one. The rule is pure: identical
// input always yields the identical group key.
func ExtractLogicalName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if idx := strings.LastIndex(n, "/"); idx >= 0 {
		n = n[idx+1:]
	}
	return dateSuffix.ReplaceAllString(n, "")
}

// GroupModels builds logical model groups from catalog records. Empty input
// yields an empty group set; there are no error conditions.
func (g *Grouper) GroupModels(models []model.PhysicalModel) []model.LogicalModelGroup {
	byName := make(map[string][]model.PhysicalModel)
	for _, m := range models {
		key := m.LogicalName
		if key == "" {
			key = ExtractLogicalName(m.Name)
		}
		byName[key] = append(byName[key], m)
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	groups := make([]model.LogicalModelGroup, 0, len(names))
	for _, name := range names {
		members := byName[name]
		g.sortMembers(members)
		groups = append(groups, model.LogicalModelGroup{
			LogicalName: name,
			Members:     members,
			PrimaryID:   members[0].ID,
		})
	}
	return groups
}

// sortMembers orders group members: configured provider rank first, then
// the catalog priority field (lower = preferred), then id for a fully
// stable order. The first member after ordering is the primary.
func (g *Grouper) sortMembers(members []model.PhysicalModel) {
	sort.Slice(members, func(i, j int) bool {
		ri, rj := g.rankOf(members[i].Provider), g.rankOf(members[j].Provider)
		if ri != rj {
			return ri < rj
		}
		if members[i].Priority != members[j].Priority {
			return members[i].Priority < members[j].Priority
		}
		return members[i].ID < members[j].ID
	})
}

func (g *Grouper) rankOf(provider string) int {
	if r, ok := g.providerRank[strings.ToLower(provider)]; ok {
		return r
	}
	return len(g.providerRank)
}
