// Command vexrank harvests VEX Robotics Competition match results from the
// RobotEvents API and computes TrueSkill-style ratings for every team.
package main

func main() {
	Execute()
}
