package mysql

import (
	"fmt"

	mysqlModel "evalgrid/pkg/store/mysql/model"
)

// Repository bundles all MySQL repositories over one datastore
type Repository struct {
	ds *Datastore

	Models   *ModelRepository
	Mappings *MappingRepository
	Tasks    *TaskRepository
	Subtasks *SubtaskRepository
	Events   *EventRepository
}

// NewRepository connects to MySQL, runs schema migration, and wires up the
// per-table repositories.
func NewRepository(dsn string) (*Repository, error) {
	ds, err := NewDatastore(dsn)
	if err != nil {
		return nil, err
	}

	if err := ds.GetDB().AutoMigrate(
		&mysqlModel.PhysicalModel{},
		&mysqlModel.TemplateMapping{},
		&mysqlModel.EvalTask{},
		&mysqlModel.SubTask{},
		&mysqlModel.TaskEvent{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &Repository{
		ds:       ds,
		Models:   NewModelRepository(ds),
		Mappings: NewMappingRepository(ds),
		Tasks:    NewTaskRepository(ds),
		Subtasks: NewSubtaskRepository(ds),
		Events:   NewEventRepository(ds),
	}, nil
}

// Datastore exposes the underlying datastore for transaction scoping.
func (r *Repository) Datastore() *Datastore {
	return r.ds
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.ds.Close()
}
