/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "pdfchat/cmd"

func main() {
	cmd.Execute()
}
