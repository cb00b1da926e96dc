package main

import (
	"context"
	"fmt"

	"github.com/AntonStoeckl/accessrights-loadgen/accessdata"
	"github.com/AntonStoeckl/accessrights-loadgen/config"
	"github.com/AntonStoeckl/accessrights-loadgen/memengine"
	"github.com/AntonStoeckl/accessrights-loadgen/postgresengine"
)

// openedStore is the store of one run together with the release of its connections.
type openedStore struct {
	store accessdata.Store
	close func()
}

func openStore(ctx context.Context, s settings, options ...postgresengine.Option) (openedStore, error) {
	options = append([]postgresengine.Option{postgresengine.WithSchema(s.schema)}, options...)

	switch s.dbAdapter {
	case adapterPGX:
		return openPGXStore(ctx, s, options)

	case adapterSQL:
		return openSQLStore(ctx, s, options)

	case adapterSQLX:
		db, err := config.OpenSQLX(ctx, s.dsn, int(s.maxConnections))
		if err != nil {
			return openedStore{}, err
		}

		store, err := postgresengine.NewStoreFromSQLX(db, options...)
		if err != nil {
			_ = db.Close()
			return openedStore{}, err
		}

		return openedStore{store: store, close: func() { _ = db.Close() }}, nil

	case adapterMemory:
		return openedStore{store: memengine.New(), close: func() {}}, nil

	default:
		return openedStore{}, fmt.Errorf("%w: %q", accessdata.ErrUnknownDBAdapter, s.dbAdapter)
	}
}

func openPGXStore(ctx context.Context, s settings, options []postgresengine.Option) (openedStore, error) {
	pool, err := config.OpenPGXPool(ctx, s.dsn, s.maxConnections)
	if err != nil {
		return openedStore{}, err
	}

	if s.replicaDSN == "" {
		store, storeErr := postgresengine.NewStoreFromPGXPool(pool, options...)
		if storeErr != nil {
			pool.Close()
			return openedStore{}, storeErr
		}

		return openedStore{store: store, close: pool.Close}, nil
	}

	replica, err := config.OpenPGXPool(ctx, s.replicaDSN, s.maxConnections)
	if err != nil {
		pool.Close()
		return openedStore{}, err
	}

	closeBoth := func() {
		replica.Close()
		pool.Close()
	}

	store, err := postgresengine.NewStoreFromPGXPoolAndReplica(pool, replica, options...)
	if err != nil {
		closeBoth()
		return openedStore{}, err
	}

	return openedStore{store: store, close: closeBoth}, nil
}

func openSQLStore(ctx context.Context, s settings, options []postgresengine.Option) (openedStore, error) {
	db, err := config.OpenSQLDB(ctx, s.dsn, int(s.maxConnections))
	if err != nil {
		return openedStore{}, err
	}

	if s.replicaDSN == "" {
		store, storeErr := postgresengine.NewStoreFromSQLDB(db, options...)
		if storeErr != nil {
			_ = db.Close()
			return openedStore{}, storeErr
		}

		return openedStore{store: store, close: func() { _ = db.Close() }}, nil
	}

	replica, err := config.OpenSQLDB(ctx, s.replicaDSN, int(s.maxConnections))
	if err != nil {
		_ = db.Close()
		return openedStore{}, err
	}

	closeBoth := func() {
		_ = replica.Close()
		_ = db.Close()
	}

	store, err := postgresengine.NewStoreFromSQLDBAndReplica(db, replica, options...)
	if err != nil {
		closeBoth()
		return openedStore{}, err
	}

	return openedStore{store: store, close: closeBoth}, nil
}
