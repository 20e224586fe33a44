package config

import (
	"errors"
	"fmt"
)

// Validate checks the cross-references and policy constraints of m.
func (m *Model) Validate() error {
	if m.Pipeline == nil {
		return errors.New("a pipeline block is required")
	}
	if m.Pipeline.Retries != 0 {
		return fmt.Errorf("pipeline %q: retries must be 0, re-trigger the run instead", m.Pipeline.ID)
	}
	if m.Pipeline.Catchup {
		return fmt.Errorf("pipeline %q: catchup is not supported", m.Pipeline.ID)
	}
	if m.Pipeline.Workers < 1 {
		return fmt.Errorf("pipeline %q: workers must be >= 1", m.Pipeline.ID)
	}

	for name, c := range m.Connections {
		if !c.IsWarehouse() && !c.IsCompute() {
			return fmt.Errorf("connection %q: unknown type %q", name, c.Type)
		}
	}

	if m.Table == nil {
		return errors.New("a table block is required")
	}
	conn, ok := m.Connections[m.Table.Connection]
	if !ok {
		return fmt.Errorf("table %q: unknown connection %q", m.Table.Name, m.Table.Connection)
	}
	if !conn.IsWarehouse() {
		return fmt.Errorf("table %q: connection %q is a %s connection, not a warehouse", m.Table.Name, conn.Name, conn.Type)
	}

	if m.Transform == nil {
		return errors.New("a transform block is required")
	}
	conn, ok = m.Connections[m.Transform.Connection]
	if !ok {
		return fmt.Errorf("transform %q: unknown connection %q", m.Transform.Name, m.Transform.Connection)
	}
	if !conn.IsCompute() {
		return fmt.Errorf("transform %q: connection %q is a %s connection, not a compute engine", m.Transform.Name, conn.Name, conn.Type)
	}
	return nil
}

// WarehouseConnection returns the connection of the target table.
func (m *Model) WarehouseConnection() *Connection {
	return m.Connections[m.Table.Connection]
}

// ComputeConnection returns the connection of the transform.
func (m *Model) ComputeConnection() *Connection {
	return m.Connections[m.Transform.Connection]
}
