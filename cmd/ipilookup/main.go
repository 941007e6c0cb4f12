// Command ipilookup is a thin cobra front end over the ipintel facade:
// resolve one address or one evidence map against a data set file and
// print the configured properties' values.
package main

func main() {
	execute()
}
