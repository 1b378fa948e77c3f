// Package authz holds the role policy: which role may perform which action on
// which resource. Committee scoping is checked separately by the services.
package authz

import (
	"fmt"

	"munhub/internal/apperr"
	"munhub/models"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

const modelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

type Resource string

const (
	Event       Resource = "event"
	Committee   Resource = "committee"
	Country     Resource = "country"
	Session     Resource = "session"
	Motion      Resource = "motion"
	Voting      Resource = "voting"
	Resolution  Resource = "resolution"
	Amendment   Resource = "amendment"
	Message     Resource = "message"
	Statistics  Resource = "statistics"
	SpeakerList Resource = "speakerlist"
	Timer       Resource = "timer"
	User        Resource = "user"
)

type Action string

const (
	Create    Action = "create"
	Update    Action = "update"
	Delete    Action = "delete"
	Read      Action = "read"
	Manage    Action = "manage"
	Propose   Action = "propose"
	Second    Action = "second"
	Decide    Action = "decide"
	Vote      Action = "vote"
	Finalize  Action = "finalize"
	CoAuthor  Action = "coauthor"
	Review    Action = "review"
	Select    Action = "select"
	Apply     Action = "apply"
	Send      Action = "send"
	Broadcast Action = "broadcast"
	Join      Action = "join"
	Export    Action = "export"
)

type rule struct {
	role models.Role
	obj  Resource
	act  Action
}

var defaultPolicies = []rule{
	{models.RoleAdmin, Event, Create},
	{models.RoleAdmin, Event, Update},
	{models.RoleAdmin, Event, Delete},
	{models.RoleAdmin, Committee, Create},
	{models.RoleAdmin, Committee, Delete},
	{models.RoleAdmin, Country, Manage},
	{models.RoleAdmin, User, Create},

	{models.RolePresidium, Committee, Update},
	{models.RolePresidium, Committee, Export},
	{models.RolePresidium, Session, Create},
	{models.RolePresidium, Session, Update},
	{models.RolePresidium, Motion, Propose},
	{models.RolePresidium, Motion, Decide},
	{models.RolePresidium, Voting, Create},
	{models.RolePresidium, Voting, Finalize},
	{models.RolePresidium, Resolution, Review},
	{models.RolePresidium, Resolution, Select},
	{models.RolePresidium, Amendment, Review},
	{models.RolePresidium, Amendment, Apply},
	{models.RolePresidium, Message, Send},
	{models.RolePresidium, Message, Broadcast},
	{models.RolePresidium, Statistics, Read},
	{models.RolePresidium, Statistics, Manage},
	{models.RolePresidium, SpeakerList, Manage},
	{models.RolePresidium, Timer, Manage},

	{models.RoleDelegate, Motion, Propose},
	{models.RoleDelegate, Motion, Second},
	{models.RoleDelegate, Voting, Vote},
	{models.RoleDelegate, Resolution, Create},
	{models.RoleDelegate, Resolution, CoAuthor},
	{models.RoleDelegate, Amendment, Create},
	{models.RoleDelegate, Message, Send},
	{models.RoleDelegate, SpeakerList, Join},
}

// Admins inherit everything the presidium may do.
var roleInheritance = [][2]models.Role{
	{models.RoleAdmin, models.RolePresidium},
}

type Authorizer struct {
	enforcer *casbin.Enforcer
}

// New builds the enforcer from the in-code model and policy.
func New() (*Authorizer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin model: %w", err)
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	for _, p := range defaultPolicies {
		if _, err := e.AddPolicy(string(p.role), string(p.obj), string(p.act)); err != nil {
			return nil, fmt.Errorf("failed to add policy %v: %w", p, err)
		}
	}
	for _, g := range roleInheritance {
		if _, err := e.AddGroupingPolicy(string(g[0]), string(g[1])); err != nil {
			return nil, fmt.Errorf("failed to add role %v: %w", g, err)
		}
	}
	return &Authorizer{enforcer: e}, nil
}

// MustNew is New for wiring code and tests where the static policy cannot fail.
func MustNew() *Authorizer {
	a, err := New()
	if err != nil {
		panic(err)
	}
	return a
}

func (a *Authorizer) Allowed(role models.Role, obj Resource, act Action) bool {
	ok, err := a.enforcer.Enforce(string(role), string(obj), string(act))
	return err == nil && ok
}

// Require returns a Forbidden error unless p's role may act on obj.
func (a *Authorizer) Require(p models.Principal, obj Resource, act Action) error {
	if !a.Allowed(p.Role, obj, act) {
		return apperr.Forbidden("Insufficient permissions")
	}
	return nil
}

// RequireInCommittee also checks that p is assigned to the committee.
func (a *Authorizer) RequireInCommittee(p models.Principal, committee *models.Committee, obj Resource, act Action) error {
	if err := a.Require(p, obj, act); err != nil {
		return err
	}
	if !p.BelongsTo(committee.ID) {
		return apperr.Forbidden("You are not assigned to this committee")
	}
	return nil
}
