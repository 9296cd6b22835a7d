// Package main is the entry point for gridpatch.
//
//	@title			gridpatch API
//	@version		1.0
//	@description	Structured table editing over JSON documents. Every gesture is committed as a patch event.
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host			localhost:8080
//	@BasePath		/
package main

func main() {
	Execute()
}
