package mocks

import "roombook/infras/otel"

// noopScope discards everything.
type noopScope struct{}

func (noopScope) AddEvent(string)              {}
func (noopScope) End()                         {}
func (noopScope) EndWith(*error)               {}
func (noopScope) SetAttribute(string, any)     {}
func (noopScope) SetAttributes(map[string]any) {}
func (noopScope) TraceError(error)             {}

func NewScope() otel.Scope {
	return noopScope{}
}
