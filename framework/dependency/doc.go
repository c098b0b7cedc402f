// Package dependency holds the declarative model of the object graph: the
// definitions read from dependency files and the Registry that indexes them.
//
// # Model
//
//	Argument       name + resolver type + ordered properties
//	Call           method name + optional id + ordered arguments
//	ConstructCall  a Call on the instance of another interface (factory)
//	Definition     class name or factory, id, interfaces, calls, tags
//	Registry       interface → id → Definition, in insertion order
//
// # Building definitions
//
//	d, err := dependency.New(dependency.Spec{
//	    ClassName:  "app.SmtpMailer",
//	    ID:         "smtp",
//	    Interfaces: []string{"app.Mailer"},
//	    Calls: []*dependency.Call{
//	        dependency.NewCall(dependency.Constructor, "",
//	            dependency.NewArgument("host", "parameter",
//	                dependency.Property{Key: "key", Value: "mail.host"})),
//	    },
//	    Tags: []string{"mail"},
//	})
//
//	reg := dependency.NewRegistry()
//	reg.Add(d)
//	reg.Definitions("app.Mailer") // [smtp]
//
// # Extending
//
// Extend copies a definition and applies overrides; the original is left
// untouched, so a base definition can be specialised by later files:
//
//	queued, err := d.Extend(dependency.Spec{ID: "queued", ClassName: "app.QueuedMailer"})
//
// Definitions are read from files by package io and turned into instances by
// package container.
package dependency
