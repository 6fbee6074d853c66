package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/alex-1-tech/assemcloud/internal/model/entity"
	"github.com/alex-1-tech/assemcloud/internal/repository"
)

// Hierarchy validation errors, surfaced to clients as 400s.
var (
	ErrSelfParent      = errors.New("a module link cannot be its own parent")
	ErrCyclicHierarchy = errors.New("assignment would create a cycle in the assembly hierarchy")
	ErrParentMachine   = errors.New("parent link belongs to a different machine")
	ErrQuantity        = errors.New("quantity must be greater than zero")
)

// AssemblyService builds assembly trees and manages hierarchy links
// between machines and modules.
type AssemblyService struct {
	moduleRepo  *repository.ModuleRepository
	machineRepo *repository.MachineRepository
}

// NewAssemblyService creates the assembly service.
func NewAssemblyService(moduleRepo *repository.ModuleRepository, machineRepo *repository.MachineRepository) *AssemblyService {
	return &AssemblyService{moduleRepo: moduleRepo, machineRepo: machineRepo}
}

// TreePart is one part line in a tree node.
type TreePart struct {
	Part     *entity.Part `json:"part"`
	Quantity int          `json:"quantity"`
}

// TreeNode is one module placement in the assembly tree.
type TreeNode struct {
	LinkID   string         `json:"link_id"`
	Module   *entity.Module `json:"module"`
	Quantity int            `json:"quantity"`
	Parts    []TreePart     `json:"parts"`
	Children []*TreeNode    `json:"children"`
}

// MachineTree builds the full assembly tree of a machine. Roots are the
// links without a parent; children keep insertion order.
func (s *AssemblyService) MachineTree(ctx context.Context, machineID string) ([]*TreeNode, error) {
	if _, err := s.machineRepo.FindByID(ctx, machineID); err != nil {
		return nil, err
	}

	links, err := s.moduleRepo.ListLinksByMachine(ctx, machineID)
	if err != nil {
		return nil, fmt.Errorf("load links: %w", err)
	}

	nodes := make(map[string]*TreeNode, len(links))
	for i := range links {
		nodes[links[i].ID] = newTreeNode(&links[i])
	}

	var roots []*TreeNode
	for i := range links {
		node := nodes[links[i].ID]
		if links[i].ParentID == nil {
			roots = append(roots, node)
			continue
		}
		if parent, ok := nodes[*links[i].ParentID]; ok {
			parent.Children = append(parent.Children, node)
		} else {
			// Orphaned parent reference; show the subtree at top level
			// rather than dropping it.
			roots = append(roots, node)
		}
	}
	return roots, nil
}

// ModuleSubtree builds the tree rooted at one hierarchy link.
func (s *AssemblyService) ModuleSubtree(ctx context.Context, linkID string) (*TreeNode, error) {
	link, err := s.moduleRepo.FindLinkByID(ctx, linkID)
	if err != nil {
		return nil, err
	}

	links, err := s.moduleRepo.ListLinksByMachine(ctx, link.MachineID)
	if err != nil {
		return nil, fmt.Errorf("load links: %w", err)
	}

	children := make(map[string][]*entity.MachineModule)
	byID := make(map[string]*entity.MachineModule, len(links))
	for i := range links {
		byID[links[i].ID] = &links[i]
		if links[i].ParentID != nil {
			children[*links[i].ParentID] = append(children[*links[i].ParentID], &links[i])
		}
	}

	root, ok := byID[linkID]
	if !ok {
		return nil, repository.ErrNotFound
	}

	// Visited set keeps the walk finite even on corrupted cyclic data.
	visited := make(map[string]bool)
	var build func(l *entity.MachineModule) *TreeNode
	build = func(l *entity.MachineModule) *TreeNode {
		if visited[l.ID] {
			return nil
		}
		visited[l.ID] = true
		node := newTreeNode(l)
		for _, child := range children[l.ID] {
			if cn := build(child); cn != nil {
				node.Children = append(node.Children, cn)
			}
		}
		return node
	}
	return build(root), nil
}

func newTreeNode(link *entity.MachineModule) *TreeNode {
	node := &TreeNode{
		LinkID:   link.ID,
		Module:   link.Module,
		Quantity: link.Quantity,
		Parts:    []TreePart{},
		Children: []*TreeNode{},
	}
	if link.Module != nil {
		for i := range link.Module.Parts {
			node.Parts = append(node.Parts, TreePart{
				Part:     link.Module.Parts[i].Part,
				Quantity: link.Module.Parts[i].Quantity,
			})
		}
	}
	return node
}

// LinkInput carries hierarchy link create/update fields.
type LinkInput struct {
	MachineID string  `json:"machine_id" binding:"required"`
	ModuleID  string  `json:"module_id" binding:"required"`
	ParentID  *string `json:"parent_id"`
	Quantity  int     `json:"quantity"`
}

// CreateLink places a module in a machine's hierarchy after the cycle
// guard passes.
func (s *AssemblyService) CreateLink(ctx context.Context, in LinkInput) (*entity.MachineModule, error) {
	if in.Quantity == 0 {
		in.Quantity = 1
	}
	if in.Quantity < 0 {
		return nil, ErrQuantity
	}
	if _, err := s.machineRepo.FindByID(ctx, in.MachineID); err != nil {
		return nil, err
	}
	if _, err := s.moduleRepo.FindByID(ctx, in.ModuleID); err != nil {
		return nil, err
	}

	link := &entity.MachineModule{
		ID:        repository.NewID(),
		MachineID: in.MachineID,
		ModuleID:  in.ModuleID,
		ParentID:  in.ParentID,
		Quantity:  in.Quantity,
	}
	if err := s.validateParent(ctx, link); err != nil {
		return nil, err
	}
	if err := s.moduleRepo.CreateLink(ctx, link); err != nil {
		return nil, fmt.Errorf("create link: %w", err)
	}
	return link, nil
}

// UpdateLink changes a link's parent and quantity after the cycle guard
// passes.
func (s *AssemblyService) UpdateLink(ctx context.Context, id string, parentID *string, quantity int) (*entity.MachineModule, error) {
	link, err := s.moduleRepo.FindLinkByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, ErrQuantity
	}

	link.ParentID = parentID
	link.Quantity = quantity
	if err := s.validateParent(ctx, link); err != nil {
		return nil, err
	}
	if err := s.moduleRepo.UpdateLink(ctx, link); err != nil {
		return nil, fmt.Errorf("update link: %w", err)
	}
	return link, nil
}

// DeleteLink removes a hierarchy link; its children move up one level.
func (s *AssemblyService) DeleteLink(ctx context.Context, id string) error {
	return s.moduleRepo.DeleteLink(ctx, id)
}

// validateParent rejects self-parenting, cross-machine parents and
// assignments that would close a cycle. The walk follows parent links
// upward from the proposed parent; reaching the edited link means the
// parent sits inside the edited link's own subtree.
func (s *AssemblyService) validateParent(ctx context.Context, link *entity.MachineModule) error {
	if link.ParentID == nil {
		return nil
	}
	if *link.ParentID == link.ID {
		return ErrSelfParent
	}

	visited := map[string]bool{link.ID: true}
	currentID := *link.ParentID
	for {
		if visited[currentID] {
			return ErrCyclicHierarchy
		}
		visited[currentID] = true

		current, err := s.moduleRepo.FindLinkByID(ctx, currentID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("parent link %s: %w", currentID, err)
			}
			return err
		}
		if current.MachineID != link.MachineID {
			return ErrParentMachine
		}
		if current.ParentID == nil {
			return nil
		}
		currentID = *current.ParentID
	}
}
