package service

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/alex-1-tech/assemcloud/internal/model/entity"
	"github.com/alex-1-tech/assemcloud/internal/repository"
	"github.com/alex-1-tech/assemcloud/internal/testutil"
)

func setupAssembly(t *testing.T) (*AssemblyService, *repository.Repositories, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	return NewAssemblyService(repos.Module, repos.Machine), repos, db
}

func TestMachineTree(t *testing.T) {
	svc, _, db := setupAssembly(t)
	ctx := context.Background()

	machine := testutil.SeedTestMachine(t, db, "machine-1", "UDS2-132", "v1")
	frame := testutil.SeedTestModule(t, db, "module-frame", "UDS.001", "Frame")
	axle := testutil.SeedTestModule(t, db, "module-axle", "UDS.002", "Axle")
	wheel := testutil.SeedTestModule(t, db, "module-wheel", "UDS.003", "Wheel")

	root, err := svc.CreateLink(ctx, LinkInput{MachineID: machine.ID, ModuleID: frame.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("create root link: %v", err)
	}
	child, err := svc.CreateLink(ctx, LinkInput{MachineID: machine.ID, ModuleID: axle.ID, ParentID: &root.ID, Quantity: 2})
	if err != nil {
		t.Fatalf("create child link: %v", err)
	}
	if _, err := svc.CreateLink(ctx, LinkInput{MachineID: machine.ID, ModuleID: wheel.ID, ParentID: &child.ID, Quantity: 4}); err != nil {
		t.Fatalf("create grandchild link: %v", err)
	}

	tree, err := svc.MachineTree(ctx, machine.ID)
	if err != nil {
		t.Fatalf("machine tree: %v", err)
	}

	if len(tree) != 1 {
		t.Fatalf("expected 1 root, got %d", len(tree))
	}
	if tree[0].Module.ID != frame.ID {
		t.Errorf("root module = %s, want %s", tree[0].Module.ID, frame.ID)
	}
	if len(tree[0].Children) != 1 {
		t.Fatalf("expected 1 child under root, got %d", len(tree[0].Children))
	}
	node := tree[0].Children[0]
	if node.Quantity != 2 {
		t.Errorf("child quantity = %d, want 2", node.Quantity)
	}
	if len(node.Children) != 1 || node.Children[0].Module.ID != wheel.ID {
		t.Errorf("grandchild missing under axle")
	}
}

func TestMachineTreePromotesOrphans(t *testing.T) {
	svc, _, db := setupAssembly(t)
	ctx := context.Background()

	machine := testutil.SeedTestMachine(t, db, "machine-1", "UDS2-132", "v1")
	mod := testutil.SeedTestModule(t, db, "module-1", "UDS.001", "Frame")

	link, err := svc.CreateLink(ctx, LinkInput{MachineID: machine.ID, ModuleID: mod.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("create link: %v", err)
	}

	// Point the link at a parent that no longer exists.
	err = db.Model(&entity.MachineModule{}).
		Where("id = ?", link.ID).
		Update("parent_id", "no-such-link").Error
	if err != nil {
		t.Fatalf("force dangling parent: %v", err)
	}

	tree, err := svc.MachineTree(ctx, machine.ID)
	if err != nil {
		t.Fatalf("machine tree: %v", err)
	}
	if len(tree) != 1 {
		t.Fatalf("orphaned link should surface as root, got %d roots", len(tree))
	}
}

func TestCreateLinkRejectsNegativeQuantity(t *testing.T) {
	svc, _, db := setupAssembly(t)
	ctx := context.Background()

	machine := testutil.SeedTestMachine(t, db, "machine-1", "UDS2-132", "v1")
	mod := testutil.SeedTestModule(t, db, "module-1", "UDS.001", "Frame")

	_, err := svc.CreateLink(ctx, LinkInput{MachineID: machine.ID, ModuleID: mod.ID, Quantity: -3})
	if !errors.Is(err, ErrQuantity) {
		t.Errorf("expected ErrQuantity, got %v", err)
	}
}

func TestUpdateLinkRejectsSelfParent(t *testing.T) {
	svc, _, db := setupAssembly(t)
	ctx := context.Background()

	machine := testutil.SeedTestMachine(t, db, "machine-1", "UDS2-132", "v1")
	mod := testutil.SeedTestModule(t, db, "module-1", "UDS.001", "Frame")

	link, err := svc.CreateLink(ctx, LinkInput{MachineID: machine.ID, ModuleID: mod.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("create link: %v", err)
	}

	_, err = svc.UpdateLink(ctx, link.ID, &link.ID, 1)
	if !errors.Is(err, ErrSelfParent) {
		t.Errorf("expected ErrSelfParent, got %v", err)
	}
}

func TestUpdateLinkRejectsCycle(t *testing.T) {
	svc, _, db := setupAssembly(t)
	ctx := context.Background()

	machine := testutil.SeedTestMachine(t, db, "machine-1", "UDS2-132", "v1")
	a := testutil.SeedTestModule(t, db, "module-a", "UDS.001", "A")
	b := testutil.SeedTestModule(t, db, "module-b", "UDS.002", "B")
	c := testutil.SeedTestModule(t, db, "module-c", "UDS.003", "C")

	la, err := svc.CreateLink(ctx, LinkInput{MachineID: machine.ID, ModuleID: a.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("create link a: %v", err)
	}
	lb, err := svc.CreateLink(ctx, LinkInput{MachineID: machine.ID, ModuleID: b.ID, ParentID: &la.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("create link b: %v", err)
	}
	lc, err := svc.CreateLink(ctx, LinkInput{MachineID: machine.ID, ModuleID: c.ID, ParentID: &lb.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("create link c: %v", err)
	}

	// Moving a under its own descendant closes a loop.
	_, err = svc.UpdateLink(ctx, la.ID, &lc.ID, 1)
	if !errors.Is(err, ErrCyclicHierarchy) {
		t.Errorf("expected ErrCyclicHierarchy, got %v", err)
	}
}

func TestUpdateLinkRejectsCrossMachineParent(t *testing.T) {
	svc, _, db := setupAssembly(t)
	ctx := context.Background()

	m1 := testutil.SeedTestMachine(t, db, "machine-1", "UDS2-132", "v1")
	m2 := testutil.SeedTestMachine(t, db, "machine-2", "UDS2-77", "v1")
	a := testutil.SeedTestModule(t, db, "module-a", "UDS.001", "A")
	b := testutil.SeedTestModule(t, db, "module-b", "UDS.002", "B")

	la, err := svc.CreateLink(ctx, LinkInput{MachineID: m1.ID, ModuleID: a.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("create link a: %v", err)
	}
	lb, err := svc.CreateLink(ctx, LinkInput{MachineID: m2.ID, ModuleID: b.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("create link b: %v", err)
	}

	_, err = svc.UpdateLink(ctx, la.ID, &lb.ID, 1)
	if !errors.Is(err, ErrParentMachine) {
		t.Errorf("expected ErrParentMachine, got %v", err)
	}
}

func TestDeleteLinkReparentsChildren(t *testing.T) {
	svc, repos, db := setupAssembly(t)
	ctx := context.Background()

	machine := testutil.SeedTestMachine(t, db, "machine-1", "UDS2-132", "v1")
	a := testutil.SeedTestModule(t, db, "module-a", "UDS.001", "A")
	b := testutil.SeedTestModule(t, db, "module-b", "UDS.002", "B")
	c := testutil.SeedTestModule(t, db, "module-c", "UDS.003", "C")

	la, err := svc.CreateLink(ctx, LinkInput{MachineID: machine.ID, ModuleID: a.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("create link a: %v", err)
	}
	lb, err := svc.CreateLink(ctx, LinkInput{MachineID: machine.ID, ModuleID: b.ID, ParentID: &la.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("create link b: %v", err)
	}
	lc, err := svc.CreateLink(ctx, LinkInput{MachineID: machine.ID, ModuleID: c.ID, ParentID: &lb.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("create link c: %v", err)
	}

	if err := svc.DeleteLink(ctx, lb.ID); err != nil {
		t.Fatalf("delete middle link: %v", err)
	}

	got, err := repos.Module.FindLinkByID(ctx, lc.ID)
	if err != nil {
		t.Fatalf("reload grandchild: %v", err)
	}
	if got.ParentID == nil || *got.ParentID != la.ID {
		t.Errorf("grandchild should be reparented to the deleted link's parent")
	}
}

func TestModuleSubtree(t *testing.T) {
	svc, _, db := setupAssembly(t)
	ctx := context.Background()

	machine := testutil.SeedTestMachine(t, db, "machine-1", "UDS2-132", "v1")
	a := testutil.SeedTestModule(t, db, "module-a", "UDS.001", "A")
	b := testutil.SeedTestModule(t, db, "module-b", "UDS.002", "B")

	la, err := svc.CreateLink(ctx, LinkInput{MachineID: machine.ID, ModuleID: a.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("create link a: %v", err)
	}
	if _, err := svc.CreateLink(ctx, LinkInput{MachineID: machine.ID, ModuleID: b.ID, ParentID: &la.ID, Quantity: 5}); err != nil {
		t.Fatalf("create link b: %v", err)
	}

	node, err := svc.ModuleSubtree(ctx, la.ID)
	if err != nil {
		t.Fatalf("module subtree: %v", err)
	}
	if node.Module.ID != a.ID {
		t.Errorf("subtree root module = %s, want %s", node.Module.ID, a.ID)
	}
	if len(node.Children) != 1 || node.Children[0].Quantity != 5 {
		t.Errorf("subtree child missing or wrong quantity")
	}
}
