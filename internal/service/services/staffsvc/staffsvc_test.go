package staffsvc

import (
	"context"
	"errors"
	"testing"

	"github.com/corray333/littlelemon/internal/dal/memory"
	"github.com/corray333/littlelemon/internal/service/models/principal"
	"github.com/corray333/littlelemon/internal/service/models/user"
	"github.com/corray333/littlelemon/internal/service/svcerr"
)

func TestResolveGroup(t *testing.T) {
	tests := []struct {
		slug    string
		want    string
		wantErr bool
	}{
		{slug: "manager", want: user.GroupManager},
		{slug: "delivery-crew", want: user.GroupDeliveryCrew},
		{slug: "Delivery-Crew", want: user.GroupDeliveryCrew},
		{slug: "chefs", wantErr: true},
		{slug: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			got, err := ResolveGroup(tt.slug)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ResolveGroup() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, svcerr.ErrNotFound) {
				t.Errorf("ResolveGroup() error = %v, want not found", err)
			}
			if got != tt.want {
				t.Errorf("ResolveGroup() = %q, want %q", got, tt.want)
			}
		})
	}
}

type fixture struct {
	store   *memory.Store
	svc     *StaffService
	manager principal.Principal
	agent   principal.Principal
	guest   user.User
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	store := memory.NewStore()
	manager := store.AddUser(user.User{Username: "mary", Groups: []string{user.GroupManager}})
	agent := store.AddUser(user.User{Username: "dave", Groups: []string{user.GroupDeliveryCrew}})
	guest := store.AddUser(user.User{Username: "guest"})

	return fixture{
		store:   store,
		svc:     MustNewStaffService(WithUnitOfWork(store.Factory())),
		manager: principal.Principal{UserID: manager.ID, Groups: manager.Groups},
		agent:   principal.Principal{UserID: agent.ID, Groups: agent.Groups},
		guest:   guest,
	}
}

func TestOnlyManagersManageStaff(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	customer := principal.Principal{UserID: f.guest.ID}

	for _, p := range []principal.Principal{f.agent, customer} {
		if _, err := f.svc.ListMembers(ctx, p, user.GroupDeliveryCrew); !errors.Is(err, svcerr.ErrForbidden) {
			t.Errorf("ListMembers() error = %v, want forbidden", err)
		}
		if _, err := f.svc.AddMember(ctx, p, user.GroupDeliveryCrew, "guest"); !errors.Is(err, svcerr.ErrForbidden) {
			t.Errorf("AddMember() error = %v, want forbidden", err)
		}
		if err := f.svc.RemoveMember(ctx, p, user.GroupDeliveryCrew, f.guest.ID); !errors.Is(err, svcerr.ErrForbidden) {
			t.Errorf("RemoveMember() error = %v, want forbidden", err)
		}
	}
}

func TestMembership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	members, err := f.svc.ListMembers(ctx, f.manager, user.GroupDeliveryCrew)
	if err != nil {
		t.Fatalf("ListMembers() error = %v", err)
	}
	if len(members) != 1 || members[0].Username != "dave" {
		t.Fatalf("ListMembers() = %+v, want dave", members)
	}

	added, err := f.svc.AddMember(ctx, f.manager, user.GroupDeliveryCrew, " guest ")
	if err != nil {
		t.Fatalf("AddMember() error = %v", err)
	}
	if added.ID != f.guest.ID || !added.InGroup(user.GroupDeliveryCrew) {
		t.Errorf("AddMember() = %+v", added)
	}

	if _, err := f.svc.AddMember(ctx, f.manager, user.GroupDeliveryCrew, "guest"); err != nil {
		t.Fatalf("adding an existing member: %v", err)
	}

	members, _ = f.svc.ListMembers(ctx, f.manager, user.GroupDeliveryCrew)
	if len(members) != 2 {
		t.Fatalf("ListMembers() = %d members, want 2", len(members))
	}

	if err := f.svc.RemoveMember(ctx, f.manager, user.GroupDeliveryCrew, f.guest.ID); err != nil {
		t.Fatalf("RemoveMember() error = %v", err)
	}
	if err := f.svc.RemoveMember(ctx, f.manager, user.GroupDeliveryCrew, f.guest.ID); !errors.Is(err, svcerr.ErrNotFound) {
		t.Errorf("second RemoveMember() error = %v, want not found", err)
	}
}

func TestAddMemberValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.AddMember(ctx, f.manager, user.GroupManager, "  "); !errors.Is(err, svcerr.ErrValidation) {
		t.Errorf("blank username error = %v, want validation", err)
	}
	if _, err := f.svc.AddMember(ctx, f.manager, user.GroupManager, "nobody"); !errors.Is(err, svcerr.ErrNotFound) {
		t.Errorf("unknown username error = %v, want not found", err)
	}
}
