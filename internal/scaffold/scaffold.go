// Package scaffold builds the supporting code injected ahead of user
// sketch code inside the execution context. Its line count is what the
// error line mapper subtracts from reported line numbers.
package scaffold

import "github.com/mjvo/sketchbridge/internal/linemap"

// RecordFunc is the host primitive the console shim calls with each
// captured entry.
const RecordFunc = "__sketchRecord"

// InstanceBinding is the host-provided sketch instance object the
// transpiled code's handle is bound to.
const InstanceBinding = "__sketchInstance"

// prelude captures console output and binds the instance handle. It must
// stay ahead of user code; every edit here shifts reported line numbers.
const prelude = `var p = __sketchInstance;
(function () {
  var record = __sketchRecord;
  var levels = ['log', 'info', 'warn', 'error'];
  var console = {};
  for (var i = 0; i < levels.length; i++) {
    (function (level) {
      console[level] = function () {
        var parts = [];
        for (var j = 0; j < arguments.length; j++) parts.push(String(arguments[j]));
        record(level, parts.join(' '));
      };
    })(levels[i]);
  }
  globalThis.console = console;
})();
`

// Scaffold is one built prelude and its line count.
type Scaffold struct {
	Text  string
	Lines int
}

// Build returns the console-capture prelude.
func Build() Scaffold {
	return Scaffold{
		Text:  prelude,
		Lines: linemap.ScaffoldLines(prelude),
	}
}
