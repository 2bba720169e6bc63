package girder

import (
	"context"
	"fmt"

	"github.com/psobolev/girder/internal/inject"
)

// buildModuleList materializes every deferred module against the
// bootstrap graph and applies the transformer pipeline. Instantiation
// order is marker-derived ctors, explicit module instances, explicit
// ctors, then scanned ctors; if the entry point is itself a Module it
// goes last so it can override everything else.
func buildModuleList(
	ctx context.Context,
	b *Builder,
	boot *inject.Container,
	markerCtors []ModuleCtor,
	scannedCtors []ModuleCtor,
	entry any,
) ([]Module, error) {
	var modules []Module

	materialize := func(group string, ctors []ModuleCtor) error {
		for i, ctor := range ctors {
			m, err := ctor(ctx, boot)
			if err != nil {
				return errModuleFailed(fmt.Sprintf("%s module ctor %d", group, i), err)
			}
			modules = append(modules, m)
		}
		return nil
	}

	if err := materialize("marker", markerCtors); err != nil {
		return nil, err
	}
	modules = append(modules, b.modules...)
	if err := materialize("configured", b.moduleCtors); err != nil {
		return nil, err
	}
	if err := materialize("scanned", scannedCtors); err != nil {
		return nil, err
	}

	if entryModule, ok := entry.(Module); ok {
		modules = append(modules, entryModule)
	}

	for i, transform := range b.transformers {
		var err error
		modules, err = transform(modules)
		if err != nil {
			return nil, errModuleFailed(fmt.Sprintf("module transformer %d", i), err)
		}
	}

	return modules, nil
}
