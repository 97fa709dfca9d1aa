package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/sebmaj/netcat-go/pkg/util"
)

// confirmDeploymentValidity prints the snippet text and the resolved
// device list and requires the operator to type "yes" to each in turn,
// grounded on netcat_deploy.py's confirm_deployment_validity.
func confirmDeploymentValidity(snippetText string, deviceNames []string) bool {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println()
	fmt.Println("******************** CONFIGURATION SNIPPET ********************")
	fmt.Println()
	fmt.Println(snippetText)
	fmt.Println()
	fmt.Println("***************************************************************")
	fmt.Println()
	if !confirm(reader, "Type 'yes' if the above snippet is correct: ") {
		util.Error("User haven't confirmed validity of snippet")
		return false
	}
	util.Info("User confirmed validity of snippet")

	fmt.Println()
	fmt.Println("************************* DEVICE LIST *************************")
	fmt.Println()
	fmt.Println(strings.Join(deviceNames, ", "))
	fmt.Println()
	fmt.Println("***************************************************************")
	fmt.Println()
	if !confirm(reader, "Type 'yes' if the above device list is correct: ") {
		util.Error("User haven't confirmed validity of device list")
		return false
	}
	util.Info("User confirmed validity of device list")

	return true
}

func confirm(reader *bufio.Reader, prompt string) bool {
	fmt.Print(prompt)
	line, _ := reader.ReadString('\n')
	fmt.Println()
	return strings.ToLower(strings.TrimSpace(line)) == "yes"
}
