// Package workbench is the session facade over the loadout engine. A
// Workbench owns one loadout and its undo stack; every operation resolves
// catalog ids through a model.Lookup, builds the matching command and
// pushes it on the stack.
//
// Operations run inside telemetry spans named workbench.<operation>. Equip
// failures are counted by reason, auto placement searches are timed, and
// each stack transition is published as an event and, when a Journal is
// configured, appended to it:
//
//	store, _ := stores.NewSQLiteStore(stores.Config{Path: "forge.db"})
//	w, err := workbench.New(catalog.Builtin(), "std50",
//	    workbench.WithTelemetry(tel),
//	    workbench.WithJournal(store),
//	)
//	if err != nil {
//	    return err
//	}
//	if _, err := w.AutoAdd(ctx, "ppc"); model.IsEquip(err) {
//	    // the loadout is unchanged
//	}
package workbench
