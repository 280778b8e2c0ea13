// Package velocity provides a text template engine with Velocity-style
// directives.
//
// Templates are plain text with control tags and placeholders. Tags are
// found by scanning the raw text, so they may appear anywhere, including
// mid-line and inside CJK or other multi-byte content.
//
// # Quick Start
//
//	engine := velocity.New()
//
//	ctx, err := velocity.FromJSON([]byte(`{"name": "Ada", "items": [1, 2, 3]}`))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	out, err := engine.Render("Hello ${name}!#foreach($i in $items) $i#end", ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// out == "Hello Ada! 1 2 3"
//
// # Template Syntax
//
// Control structures:
//
//	#if( <condition> ) ... #elseif( <condition> ) ... #else ... #end
//	#foreach( $item in $collection ) ... #end
//	#set( $key = <value> )
//
// Placeholders:
//
//	${name}       - exact key lookup
//	$name         - longest dotted key present, e.g. $item.index
//
// Placeholders that do not resolve are written back as ${name}.
//
// Inside #foreach the context gains loop metadata keys: <var>.index
// (0-based), <var>.count (1-based), <var>.first, <var>.last and
// <var>.hasNext. Elements that are objects expose their fields as
// <var>.<field>; object collections bind <var>.key and <var>.value.
// The collection may also be an inline JSON array or object, or a range
// such as [1..5].
//
// #set coerces its value in this order: true/false, JSON array, JSON
// object, comparison or arithmetic expression, quoted string, integer,
// float, and finally the raw text. Arrays and objects also set <key>.size.
//
// # Conditions
//
// Conditions are substituted and then handed to a ConditionEvaluator.
// The default evaluator (package expr) supports == != < > <= >= && || !
// and arithmetic. A condition that fails to evaluate counts as false; the
// failure is logged and passed to the hook set with WithRecoveryHook.
//
// # Caching
//
// Each Engine owns a CompiledTemplateCache keyed by the SHA-256 of the
// template source. Share one cache between engines with WithCache, or
// disable caching with Config.DisableCache.
//
// # Configuration
//
// Configuration is read from environment variables at startup:
//
//	VELOCITY_LOG_LEVEL        - debug, info, warn, error or off (default info)
//	VELOCITY_LOG_FORMAT       - text or json (default text)
//	VELOCITY_MAX_RENDER_DEPTH - maximum #if/#foreach nesting while rendering (default 100)
//	VELOCITY_CACHE            - set to false to disable the template cache
//
// LoadConfigFile reads the same settings from an HCL file.
package velocity
