package main

import (
	"fmt"
	"log"
	"net"
	"os"
	"strconv"

	"NetGauge/internal/recv"
)

func usage() {
	fmt.Println("Run like : ng-dump <arg1:server ip:this system IP 192.168.1.6> <arg2:server port:4444 >")
}

func main() {
	if len(os.Args) != 3 {
		usage()
		os.Exit(1)
	}

	ip := os.Args[1]
	port, err := strconv.Atoi(os.Args[2])
	if err != nil || port < 0 || port > 65535 {
		usage()
		os.Exit(1)
	}

	bindIP := net.ParseIP(ip)
	if bindIP == nil {
		usage()
		os.Exit(1)
	}

	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: bindIP, Port: port})
	if err != nil {
		log.Fatalf("Failed to bind %s:%d: %v", ip, port, err)
	}
	defer conn.Close()

	fmt.Println("Do Ctrl+c to exit the program !!")
	fmt.Printf("## server is listening from %s on Port %d \n", ip, port)

	if err := recv.Dump(conn, os.Stdout); err != nil {
		log.Fatalf("Receive loop failed: %v", err)
	}
}
