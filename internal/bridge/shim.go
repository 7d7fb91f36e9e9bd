package bridge

import (
	"encoding/json"
	"strings"
)

// shimSource is the browser side of the bridge. It keeps the socket and the
// location hash in sync and fires a "helm:route" event for every match.
const shimSource = `(function () {
  "use strict";
  var socketPath = __SOCKET_PATH__;
  var current = function () { return location.hash.replace(/^#/, ""); };
  var proto = location.protocol === "https:" ? "wss:" : "ws:";
  var url = proto + "//" + location.host + socketPath + "?hash=" + encodeURIComponent(current());
  var ws = new WebSocket(url);

  ws.onmessage = function (ev) {
    var msg;
    try { msg = JSON.parse(ev.data); } catch (e) { return; }
    if (msg.type === "navigate") {
      if (current() !== msg.path) { location.hash = msg.path; }
    } else if (msg.type === "route") {
      window.dispatchEvent(new CustomEvent("helm:route", { detail: msg }));
    }
  };

  window.addEventListener("hashchange", function () {
    if (ws.readyState === WebSocket.OPEN) {
      ws.send(JSON.stringify({ type: "hashchange", path: current() }));
    }
  });

  window.helm = {
    go: function (path) { location.hash = path; },
    socket: ws
  };
})();
`

// Shim returns the browser script for the given socket path.
func Shim(socketPath string) string {
	quoted, _ := json.Marshal(socketPath)
	return strings.Replace(shimSource, "__SOCKET_PATH__", string(quoted), 1)
}
