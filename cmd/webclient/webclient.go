//go:build js && wasm

// webclient.go is a WASM worker for the distributed Mandelbrot matrix.
// Opening the page served by the coordinator (-static) lends the browser's CPU
// to the run as one more rank.

package main

import (
	"context"
	"fmt"
	"log"
	"syscall/js"

	mandel "github.com/marben/dist_mandel"
	"github.com/marben/dist_mandel/cluster"
	"github.com/marben/dist_mandel/render"
)

// main is the entry point for the WASM worker.
func main() {
	logScreenf("Starting WASM worker...")

	// Step 1: Determine server address for WebSocket connection
	loc := js.Global().Get("window").Get("location")
	host := loc.Get("host").String()
	proto := "ws"
	if loc.Get("protocol").String() == "https:" {
		proto = "wss"
	}
	websocketUrl := proto + "://" + host + "/ws"

	// Step 2: Join the coordinator and render whatever partition we get.
	// A browser runs goroutines on one thread, so more than one buys nothing.
	logScreenf("Joining Mandelbrot coordinator at %s...", websocketUrl)
	w := cluster.Worker{
		URL: websocketUrl,
		Renderer: render.RendererImpl{
			Threads: 1,
			OnPartitionRender: func(p mandel.Partition) {
				logScreenf("Rendering %s", p)
				hudSetPartition(p)
			},
		},
	}
	if err := w.Run(context.Background()); err != nil {
		logFatalf("worker: %v", err)
	}
	logScreenf("Partition delivered, run finished.")

	// Step 3: Block main goroutine to keep WASM running
	select {}
}

// logScreenf appends a formatted message to the log element in the DOM,
func logScreenf(format string, a ...any) {
	msg := fmt.Sprintf(format, a...)

	doc := js.Global().Get("document")
	logElem := doc.Call("getElementById", "log")
	logElem.Set("textContent", logElem.Get("textContent").String()+msg+"\n")
}

// logFatalf logs a fatal error to the log window and terminates the program.
func logFatalf(format string, a ...any) {
	logScreenf("FATAL: "+format, a...)
	log.Fatalf(format, a...)
}

// hudSetPartition shows the rank and pixel range this page is computing.
func hudSetPartition(p mandel.Partition) {
	doc := js.Global().Get("document")
	doc.Call("getElementById", "rank").Set("textContent", p.Rank)
	doc.Call("getElementById", "pixels").Set("textContent", p.Len())
}
