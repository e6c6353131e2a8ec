package services

import (
	"sort"

	"github.com/summitapp/summit-api/internal/config"
	"github.com/summitapp/summit-api/internal/models"
)

// GoalNode is one goal with its resolved children.
type GoalNode struct {
	Goal     models.Goal `json:"goal"`
	Children []*GoalNode `json:"children"`
}

// BuildGoalForest assembles the goal tree from the flat parent-linked rows.
// Children are ordered by deadline ascending, ties broken by creation order.
//
// A parent cycle (possible only through direct data corruption) never loops:
// each goal on a cycle, and each goal whose parent id points at a missing
// row, is demoted to a root and its id reported in the second result so the
// condition can be repaired manually.
func BuildGoalForest(goals []models.Goal) ([]*GoalNode, []uint) {
	nodes := make(map[uint]*GoalNode, len(goals))
	for i := range goals {
		nodes[goals[i].ID] = &GoalNode{Goal: goals[i]}
	}

	var corrupted []uint
	demoted := make(map[uint]bool)

	for id, node := range nodes {
		parentID := node.Goal.ParentGoalID
		if parentID == nil {
			continue
		}
		if _, ok := nodes[*parentID]; !ok {
			// dangling parent reference, keep the goal visible as a root
			corrupted = append(corrupted, id)
			demoted[id] = true
			continue
		}
		if onCycle(nodes, id) {
			corrupted = append(corrupted, id)
			demoted[id] = true
		}
	}

	if len(corrupted) > 0 {
		config.Logger.Errorw("goal hierarchy corruption detected, demoting to roots",
			"goalIds", corrupted, "error", ErrCycleDetected)
	}

	var roots []*GoalNode
	for id, node := range nodes {
		parentID := node.Goal.ParentGoalID
		if parentID == nil || demoted[id] {
			roots = append(roots, node)
			continue
		}
		parent := nodes[*parentID]
		parent.Children = append(parent.Children, node)
	}

	sortNodes(roots)
	for _, node := range nodes {
		sortNodes(node.Children)
	}
	sort.Slice(corrupted, func(i, j int) bool { return corrupted[i] < corrupted[j] })

	return roots, corrupted
}

// onCycle reports whether id sits on a parent cycle. Goals that merely
// descend from a cycle stay attached; the cycle members themselves get
// demoted, which already breaks the loop.
func onCycle(nodes map[uint]*GoalNode, id uint) bool {
	visited := map[uint]bool{}
	current := id
	for {
		if visited[current] {
			return current == id
		}
		visited[current] = true
		parentID := nodes[current].Goal.ParentGoalID
		if parentID == nil {
			return false
		}
		next, ok := nodes[*parentID]
		if !ok {
			return false
		}
		current = next.Goal.ID
	}
}

func sortNodes(nodes []*GoalNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i].Goal, nodes[j].Goal
		if !a.Deadline.Equal(b.Deadline) {
			return a.Deadline.Before(b.Deadline)
		}
		return a.ID < b.ID
	})
}

// WouldCreateCycle checks, at creation/edit time, whether attaching goalID
// under parentID closes a loop. goalID zero means a brand-new goal, which
// cannot be its own ancestor yet.
func WouldCreateCycle(goals []models.Goal, goalID uint, parentID uint) bool {
	if goalID == 0 {
		return false
	}
	byID := make(map[uint]models.Goal, len(goals))
	for _, g := range goals {
		byID[g.ID] = g
	}
	current := parentID
	for steps := 0; steps <= len(goals); steps++ {
		if current == goalID {
			return true
		}
		g, ok := byID[current]
		if !ok || g.ParentGoalID == nil {
			return false
		}
		current = *g.ParentGoalID
	}
	return true
}
