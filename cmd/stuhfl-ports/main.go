package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"stuhfl_go/internal/transport"
	"stuhfl_go/sdk"
)

func main() {
	check := flag.Bool("check", false, "connect to the detected reader and print its radio settings")
	driver := flag.String("driver", transport.DriverBugst, "serial driver used by -check (bugst or tarm)")
	flag.Parse()

	start := time.Now()
	ports, err := transport.ListPorts()
	fmt.Printf("scan duration: %s\n", time.Since(start).Round(time.Millisecond))
	if err != nil {
		fmt.Printf("scan error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("ports: %d\n", len(ports))

	for i, p := range ports {
		fmt.Printf("%2d) %s usb=%v vid=%s pid=%s serial=%q product=%q reader=%v\n",
			i+1,
			p.Name,
			p.USB,
			fallback(p.VID, "-"),
			fallback(p.PID, "-"),
			p.Serial,
			p.Product,
			p.Reader,
		)
	}

	name, err := transport.FindReaderPort()
	if err != nil {
		fmt.Printf("\nprobable reader: none (%v)\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nprobable reader: %s\n", name)

	if *check {
		if err := checkReader(name, *driver); err != nil {
			fmt.Printf("check error: %v\n", err)
			os.Exit(1)
		}
	}
}

func checkReader(name, driver string) error {
	opts := transport.DefaultOptions()
	opts.Driver = driver

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := sdk.NewConn(sdk.Options{Opener: transport.Opener{Options: opts}})
	if err := conn.Connect(ctx, name); err != nil {
		return err
	}
	defer conn.Disconnect()

	txrx, st, err := conn.GetTxRx(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("status: %s\n", st)
	fmt.Printf("antenna: %d tx=%d dB rx=%d dB\n", txrx.UsedAntenna, txrx.TxOutputLevel, txrx.RxSensitivity)

	channels, _, err := conn.GetChannelList(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("channels: %d\n", len(channels.Items))
	return nil
}

func fallback(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
