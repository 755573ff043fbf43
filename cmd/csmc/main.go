// Command csmc simulates the computer science mentoring center: students
// alternate between working and queueing for a seat while tutors help
// whoever is seated, until every student has been helped enough times.
package main

import "os"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
