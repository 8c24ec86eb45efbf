package registry

import (
	"fmt"
	"log"
	"sort"

	"github.com/st3v3nmw/notifybarrier/internal/attest"
)

func init() {
	log.SetFlags(0)
}

var groups = make(map[string]*Group)

// Group is an ordered set of scenario stages exercising one area of the
// storage stack.
type Group struct {
	Key        string
	Name       string
	Summary    string
	Stages     map[string]*Stage
	StageOrder []string
}

type Stage struct {
	Name string
	Fn   StageFunc
}

type StageFunc func() *attest.Suite

func (g *Group) AddStage(key, name string, fn StageFunc) {
	if g.Stages == nil {
		g.Stages = make(map[string]*Stage)
	}

	g.Stages[key] = &Stage{Name: name, Fn: fn}
	g.StageOrder = append(g.StageOrder, key)
}

func (g *Group) GetStage(key string) (*Stage, error) {
	stage, exists := g.Stages[key]
	if !exists {
		return nil, fmt.Errorf("stage %q not found in group %s", key, g.Key)
	}

	return stage, nil
}

func (g *Group) Len() int {
	return len(g.StageOrder)
}

// Describe renders the group and its stages for `info`.
func (g *Group) Describe() string {
	stages := ""
	for i, key := range g.StageOrder {
		stages += fmt.Sprintf("  %d. %-22s %s\n", i+1, key, g.Stages[key].Name)
	}

	return fmt.Sprintf("%s\n\n%s\n\nStages:\n%s", g.Name, g.Summary, stages)
}

func RegisterGroup(key string, group *Group) {
	if len(group.Stages) == 0 {
		log.Fatalf("Cannot register empty scenario group %s.", key)
	}

	group.Key = key
	groups[key] = group
}

func GetGroup(key string) (*Group, error) {
	group, exists := groups[key]
	if !exists {
		return nil, fmt.Errorf("scenario group %s not found", key)
	}

	return group, nil
}

// GroupKeys returns every registered key in sorted order.
func GroupKeys() []string {
	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}

	sort.Strings(keys)
	return keys
}
