// Package domain provides the per-module composition root of a component
// tree.
//
// A Manager is embedded once per bounded context. It registers the
// services and repositories of its module as subcomponents during
// OnInitialize and carries the location information the hierarchy package
// uses to place it in the tree:
//
//	type UserManager struct {
//	    *domain.Manager
//	    repo *UserRepository
//	}
//
//	func NewUserManager(repo *UserRepository) *UserManager {
//	    m := &UserManager{repo: repo}
//	    m.Manager = domain.NewManager(m, domain.WithVirtualPath("app.user"))
//	    return m
//	}
//
//	func (m *UserManager) OnInitialize(ctx context.Context) error {
//	    return m.RegisterSubcomponent(m.repo)
//	}
//
// Managers never trigger lifecycle calls themselves; the root of the wired
// tree is initialized and shut down by the host.
package domain
