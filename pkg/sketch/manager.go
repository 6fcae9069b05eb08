package sketch

import (
	"fmt"
	"sort"

	"github.com/chazu/kerf/pkg/constraint"
	"github.com/chazu/kerf/pkg/entity"
)

// UnknownEntityError reports an id with no entity behind it.
type UnknownEntityError struct {
	ID string
}

func (e *UnknownEntityError) Error() string {
	return fmt.Sprintf("unknown entity %q", e.ID)
}

// KindMismatchError reports an update whose replacement geometry has a
// different kind than the stored entity.
type KindMismatchError struct {
	ID   string
	Want entity.Kind
	Got  entity.Kind
}

func (e *KindMismatchError) Error() string {
	return fmt.Sprintf("entity %q is a %s, cannot update with a %s", e.ID, e.Want, e.Got)
}

// Manager owns the id-to-entity map, the active sketch plane, and the
// constraint solver. All entity and constraint creation and mutation goes
// through it, by id. A manager is not safe for concurrent use.
type Manager struct {
	entities map[string]entity.Entity
	solver   *constraint.Solver
	plane    Plane
	nextID   uint64
}

// NewManager creates an empty manager on the default XY plane.
func NewManager() *Manager {
	return &Manager{
		entities: make(map[string]entity.Entity),
		solver:   constraint.NewSolver(),
		plane:    XY(),
	}
}

// Solver returns the manager's constraint solver for configuration.
func (m *Manager) Solver() *constraint.Solver {
	return m.solver
}

// Plane returns the active sketch plane.
func (m *Manager) Plane() Plane {
	return m.plane
}

// PlaneTransform returns the rigid transform of the active sketch plane.
func (m *Manager) PlaneTransform() Transform {
	return m.plane.Transform()
}

// StartSketch clears all entities and constraints, optionally installing a
// new active plane. The id counter keeps running so ids stay unique across
// sketches on the same manager.
func (m *Manager) StartSketch(plane *Plane) {
	if plane != nil {
		m.plane = *plane
	}
	m.entities = make(map[string]entity.Entity)
	m.solver.Clear()
}

// idPrefix maps an entity kind to its one-letter id prefix.
func idPrefix(k entity.Kind) string {
	switch k {
	case entity.KindPoint:
		return "P"
	case entity.KindLine:
		return "L"
	case entity.KindCircle:
		return "C"
	case entity.KindArc:
		return "A"
	case entity.KindSpline:
		return "S"
	default:
		return "E"
	}
}

// store allocates the next id for the entity's kind and stores it.
func (m *Manager) store(e entity.Entity) string {
	m.nextID++
	id := fmt.Sprintf("%s%d", idPrefix(e.Kind()), m.nextID)
	m.entities[id] = e
	return id
}

// AddPoint adds a point and returns its id.
func (m *Manager) AddPoint(x, y float64) string {
	return m.store(entity.NewPoint(x, y))
}

// AddLine adds a line segment and returns its id.
func (m *Manager) AddLine(startX, startY, endX, endY float64) string {
	return m.store(entity.NewLine(entity.NewPoint(startX, startY), entity.NewPoint(endX, endY)))
}

// AddCircle adds a circle and returns its id.
func (m *Manager) AddCircle(centerX, centerY, radius float64) string {
	return m.store(entity.NewCircle(entity.NewPoint(centerX, centerY), radius))
}

// AddArc adds an arc and returns its id. Angles are in radians.
func (m *Manager) AddArc(centerX, centerY, radius, startAngle, endAngle float64) string {
	return m.store(entity.NewArc(entity.NewPoint(centerX, centerY), radius, startAngle, endAngle))
}

// AddSpline adds a B-spline over the given control point coordinates. The
// invalid-geometry error from too few control points propagates; nothing
// is stored on failure.
func (m *Manager) AddSpline(controlPoints [][2]float64, degree int) (string, error) {
	points := make([]*entity.Point, len(controlPoints))
	for i, cp := range controlPoints {
		points[i] = entity.NewPoint(cp[0], cp[1])
	}
	s, err := entity.NewSpline(points, degree)
	if err != nil {
		return "", err
	}
	return m.store(s), nil
}

// AddConstraint resolves the ids to live entity references and delegates
// to constraint validation and storage. An unknown id or a validation
// failure leaves all state unchanged.
func (m *Manager) AddConstraint(t constraint.Type, ids []string, value *float64) error {
	entities := make([]entity.Entity, len(ids))
	for i, id := range ids {
		e, ok := m.entities[id]
		if !ok {
			return &UnknownEntityError{ID: id}
		}
		entities[i] = e
	}
	c, err := constraint.New(t, entities, value)
	if err != nil {
		return err
	}
	m.solver.Add(c)
	return nil
}

// SolveConstraints reconciles point coordinates with all stored
// constraints. See constraint.Solver.Solve for the failure contract.
func (m *Manager) SolveConstraints() error {
	return m.solver.Solve()
}

// Entity returns the entity stored under id.
func (m *Manager) Entity(id string) (entity.Entity, bool) {
	e, ok := m.entities[id]
	return e, ok
}

// EntityIDs returns all ids in sorted order.
func (m *Manager) EntityIDs() []string {
	ids := make([]string, 0, len(m.entities))
	for id := range m.entities {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of stored entities.
func (m *Manager) Len() int {
	return len(m.entities)
}

// UpdateEntity replaces the geometry stored under id. The replacement must
// have the same kind as the stored entity.
func (m *Manager) UpdateEntity(id string, geom entity.Entity) error {
	old, ok := m.entities[id]
	if !ok {
		return &UnknownEntityError{ID: id}
	}
	if geom == nil || geom.Kind() != old.Kind() {
		got := entity.Kind(-1)
		if geom != nil {
			got = geom.Kind()
		}
		return &KindMismatchError{ID: id, Want: old.Kind(), Got: got}
	}
	// Constraints hold references to the replaced object; cascade them.
	m.solver.RemoveEntity(old)
	m.entities[id] = geom
	return nil
}

// DeleteEntity removes the entity and cascades removal of every constraint
// referencing it.
func (m *Manager) DeleteEntity(id string) error {
	e, ok := m.entities[id]
	if !ok {
		return &UnknownEntityError{ID: id}
	}
	delete(m.entities, id)
	m.solver.RemoveEntity(e)
	return nil
}
