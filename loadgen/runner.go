package loadgen

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/AntonStoeckl/accessrights-loadgen/accessdata"
	"github.com/AntonStoeckl/accessrights-loadgen/batch"
	"github.com/AntonStoeckl/accessrights-loadgen/generator"
)

const (
	phasePersons      = "persons"
	phaseBuildings    = "buildings"
	phaseGates        = "gates"
	phaseAccessRights = "accessrights"
	phaseSimulation   = "simulation"

	labelPersons        = "persons"
	labelBuildings      = "buildings"
	labelGateGroups     = "gategroups"
	labelGateGroupGates = "gategroupgates"
	labelAccessRights   = "accessrights"
	labelSimulations    = "simulations"
)

// Report counts what a run has written.
type Report struct {
	Persons        int
	Buildings      int
	GateGroups     int
	Gates          int
	AccessRights   int
	Events         int
	SkippedPersons int
}

// Runner executes the phases selected by a Config against one store.
type Runner struct {
	store            accessdata.Store
	executor         *batch.Executor
	rng              *rand.Rand
	factoryOptions   []generator.FactoryOption
	assignerOptions  []generator.AssignerOption
	logger           accessdata.Logger
	contextualLogger accessdata.ContextualLogger
	tracingCollector accessdata.TracingCollector
	replicaReads     bool
}

// NewRunner creates a Runner writing to store through executor.
// Without WithRand, the random source is seeded from the current time.
func NewRunner(store accessdata.Store, executor *batch.Executor, options ...Option) (*Runner, error) {
	if store == nil {
		return nil, accessdata.ErrNilDatabaseConnection
	}

	r := &Runner{
		store:    store,
		executor: executor,
	}

	for _, option := range options {
		if err := option(r); err != nil {
			return nil, err
		}
	}

	if r.executor == nil {
		defaultExecutor, err := batch.NewExecutor(batch.WithLogger(r.logger), batch.WithContextualLogger(r.contextualLogger))
		if err != nil {
			return nil, err
		}

		r.executor = defaultExecutor
	}

	if r.rng == nil {
		seed := uint64(time.Now().UnixNano())
		r.rng = rand.New(rand.NewPCG(seed, seed>>1))
	}

	return r, nil
}

// Run validates cfg and executes its phases in order: persons, buildings, gates, access rights, simulation.
// It stops at the first failing phase; what earlier phases wrote stays in the store.
func (r *Runner) Run(ctx context.Context, cfg Config) (Report, error) {
	var report Report

	if err := cfg.Validate(); err != nil {
		return report, err
	}

	factory := generator.NewFactory(r.rng, r.factoryOptions...)

	phases := []struct {
		name     string
		selected bool
		run      func(ctx context.Context) error
	}{
		{
			name:     phasePersons,
			selected: cfg.Persons > 0,
			run: func(ctx context.Context) error {
				return r.persons(ctx, factory, cfg, &report)
			},
		},
		{
			name:     phaseBuildings,
			selected: cfg.Buildings > 0,
			run: func(ctx context.Context) error {
				return r.buildings(ctx, factory, cfg, &report)
			},
		},
		{
			name:     phaseGates,
			selected: cfg.Gates > 0,
			run: func(ctx context.Context) error {
				return r.gates(ctx, factory, cfg, &report)
			},
		},
		{
			name:     phaseAccessRights,
			selected: cfg.AccessRights,
			run: func(ctx context.Context) error {
				return r.accessRights(ctx, cfg, &report)
			},
		},
		{
			name:     phaseSimulation,
			selected: cfg.Simulation,
			run: func(ctx context.Context) error {
				return r.simulation(ctx, cfg, &report)
			},
		},
	}

	for _, phase := range phases {
		if !phase.selected {
			continue
		}

		if err := r.runPhase(ctx, phase.name, phase.run); err != nil {
			return report, err
		}
	}

	return report, nil
}

func (r *Runner) runPhase(ctx context.Context, name string, run func(ctx context.Context) error) error {
	ctx, spanCtx := r.startPhaseSpan(ctx, name)
	r.logPhaseStarted(ctx, name)

	if err := run(ctx); err != nil {
		r.logPhaseFailed(ctx, name, err)
		r.finishPhaseSpan(spanCtx, err)

		return err
	}

	r.logPhaseCompleted(ctx, name)
	r.finishPhaseSpan(spanCtx, nil)

	return nil
}

func (r *Runner) persons(ctx context.Context, factory *generator.Factory, cfg Config, report *Report) error {
	persons, err := factory.Persons(cfg.Persons)
	if err != nil {
		return err
	}

	if err = r.write(ctx, cfg.WriteMode, labelPersons, insertOps(persons, r.store.InsertPersons)); err != nil {
		return err
	}

	report.Persons += len(persons)

	return nil
}

func (r *Runner) buildings(ctx context.Context, factory *generator.Factory, cfg Config, report *Report) error {
	buildings, err := factory.Buildings(cfg.Buildings)
	if err != nil {
		return err
	}

	if err = r.write(ctx, cfg.WriteMode, labelBuildings, insertOps(buildings, r.store.InsertBuildings)); err != nil {
		return err
	}

	report.Buildings += len(buildings)

	return nil
}

// gates reads one building per gate-group, then writes the gate-groups before the gates referencing them.
func (r *Runner) gates(ctx context.Context, factory *generator.Factory, cfg Config, report *Report) error {
	numGroups := generator.GateGroupCount(cfg.Gates)

	buildings, err := r.store.QueryBuildings(ctx, numGroups)
	if err != nil {
		return err
	}

	r.logFetched(ctx, labelBuildings, len(buildings), accessdata.CountByRegion(buildings, buildingRegion))

	if missing := numGroups*generator.GatesPerGroup - cfg.Gates; missing > 0 {
		r.logPartialGateGroup(ctx, cfg.Gates, missing)
	}

	topology, err := factory.GateTopology(cfg.Gates, buildings)
	if err != nil {
		return err
	}

	if err = r.write(ctx, cfg.WriteMode, labelGateGroups, insertOps(topology.Groups, r.store.InsertGateGroups)); err != nil {
		return err
	}

	report.GateGroups += len(topology.Groups)

	if err = r.write(ctx, cfg.WriteMode, labelGateGroupGates, insertOps(topology.Links, r.store.InsertGateLinks)); err != nil {
		return err
	}

	report.Gates += len(topology.Gates)

	return nil
}

func (r *Runner) accessRights(ctx context.Context, cfg Config, report *Report) error {
	persons, err := r.store.QueryPersonsWithoutAccessRight(ctx)
	if err != nil {
		return err
	}

	r.logFetched(ctx, labelPersons, len(persons), accessdata.CountByRegion(persons, personRegion))

	groups, err := r.store.QueryGateGroupRegions(ctx)
	if err != nil {
		return err
	}

	r.logFetched(ctx, labelGateGroups, len(groups), accessdata.CountByRegion(groups, gateGroupRegion))

	rights, err := generator.NewAssigner(r.rng, r.assignerOptions...).Assign(persons, groups)
	if err != nil {
		return err
	}

	if err = r.write(ctx, cfg.WriteMode, labelAccessRights, insertOps(rights, r.store.InsertAccessRights)); err != nil {
		return err
	}

	report.AccessRights += len(rights)

	return nil
}

// simulation replays one entry and one exit per person holding an access right, strictly in order.
func (r *Runner) simulation(ctx context.Context, cfg Config, report *Report) error {
	readCtx := ctx
	if r.replicaReads {
		readCtx = accessdata.WithEventualConsistency(ctx)
	}

	accesses, err := r.store.QueryPersonAccesses(readCtx)
	if err != nil {
		return err
	}

	r.logFetched(ctx, labelPersons, len(accesses), accessdata.CountByRegion(accesses, personAccessRegion))

	links, err := r.store.QueryGateLinks(readCtx)
	if err != nil {
		return err
	}

	r.logFetched(ctx, labelGateGroupGates, len(links), nil)

	sequence, err := generator.NewSequencer(r.rng, generator.WithMissingGatePolicy(cfg.MissingGatePolicy)).
		Sequence(accesses, links)
	if err != nil {
		return err
	}

	r.logSimulationsCreated(ctx, len(sequence.Events), sequence.Skipped)

	ops := make([]batch.Operation, 0, len(sequence.Events))
	for _, event := range sequence.Events {
		ops = append(ops, func(ctx context.Context) error {
			return r.store.EnterBuilding(ctx, event)
		})
	}

	if err = r.executor.RunSequential(ctx, labelSimulations, ops); err != nil {
		return err
	}

	report.Events += len(sequence.Events)
	report.SkippedPersons += sequence.Skipped

	return nil
}

func (r *Runner) write(ctx context.Context, mode WriteMode, label string, ops []batch.Operation) error {
	if mode == WriteConcurrent {
		return r.executor.RunConcurrent(ctx, label, ops)
	}

	return r.executor.RunChunked(ctx, label, ops)
}

// insertOps turns every item into one single-row insert operation.
func insertOps[T any](items []T, insert func(ctx context.Context, items ...T) error) []batch.Operation {
	ops := make([]batch.Operation, 0, len(items))
	for _, item := range items {
		ops = append(ops, func(ctx context.Context) error {
			return insert(ctx, item)
		})
	}

	return ops
}

func personRegion(p accessdata.Person) accessdata.Region { return p.Region }
func buildingRegion(b accessdata.Building) accessdata.Region { return b.Region }
func gateGroupRegion(g accessdata.GateGroupRegion) accessdata.Region { return g.Region }
func personAccessRegion(a accessdata.PersonAccess) accessdata.Region { return a.Region }
