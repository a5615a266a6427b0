// Package loader registers HTTP features on the fiber app.
//
// Each feature implements Feature. The Manager keeps them in registration
// order and LoadAll loads the enabled ones:
//
//	mgr := loader.NewManager(log)
//	mgr.Register(history.NewFeature(st, log))
//	err := mgr.LoadAll(app)
package loader
