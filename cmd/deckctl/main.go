// cmd/deckctl/main.go
package main

func main() {
	Execute()
}
