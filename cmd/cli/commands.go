package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

var (
	sportFlag  string
	matchFlag  string
	userFlag   string
	dryRunFlag bool
)

func init() {
	leaderboardCmd.Flags().StringVar(&sportFlag, "sport", "", "The sport to show the leaderboard for")
	leaderboardCmd.MarkFlagRequired("sport")

	matchesCmd.Flags().StringVar(&sportFlag, "sport", "", "Only list matches for this sport")

	settleCmd.Flags().StringVar(&matchFlag, "match", "", "The match to settle")
	settleCmd.MarkFlagRequired("match")
	settleCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Compute the settlement without persisting it")

	historyCmd.Flags().StringVar(&userFlag, "user", "", "The user to show history for")
	historyCmd.MarkFlagRequired("user")
	historyCmd.Flags().StringVar(&sportFlag, "sport", "", "Only show history for this sport")

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(sportsCmd)
	rootCmd.AddCommand(matchesCmd)
	rootCmd.AddCommand(settleCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(metricsCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health")
	},
}

var sportsCmd = &cobra.Command{
	Use:   "sports",
	Short: "List the sports in the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/sports")
	},
}

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "List the open matches",
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint := "/matches"
		if sportFlag != "" {
			endpoint += "?sport=" + url.QueryEscape(sportFlag)
		}
		return performGetRequest(endpoint)
	},
}

var settleCmd = &cobra.Command{
	Use:   "settle",
	Short: "Settle a match and apply rank changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint := "/matches/settle?matchID=" + url.QueryEscape(matchFlag)
		if dryRunFlag {
			endpoint += "&dry_run=true"
		}
		return performPostRequest(endpoint)
	},
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the rank leaderboard for a sport",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/ranks?sport=" + url.QueryEscape(sportFlag))
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show a user's match history",
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint := "/matches/history?userID=" + url.QueryEscape(userFlag)
		if sportFlag != "" {
			endpoint += "&sport=" + url.QueryEscape(sportFlag)
		}
		return performGetRequest(endpoint)
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the entire store",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/clear")
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics")
	},
}

func performGetRequest(endpoint string) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func performPostRequest(endpoint string) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	resp, err := http.Post(url, "application/json", strings.NewReader(""))
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func printResponse(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}
